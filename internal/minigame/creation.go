package minigame

import (
	"encoding/json"
	"strconv"
	"strings"
)

// GameCreation is the INIT_GAME payload: a configured game template. It is
// owned by the host; engines only read it.
//
// Content and settings are kept raw so a malformed field degrades to an
// empty value instead of failing the whole payload.
type GameCreation struct {
	ID      string          `json:"_id"`
	Config  *CreationConfig `json:"config,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
}

type CreationConfig struct {
	Settings json.RawMessage `json:"settings,omitempty"`
	Content  json.RawMessage `json:"content,omitempty"`
}

// Items returns the content items, preferring config.content over the
// top-level content. It returns nil when neither is a non-empty array.
func (c GameCreation) Items() []json.RawMessage {
	if c.Config != nil {
		if items := rawArray(c.Config.Content); len(items) > 0 {
			return items
		}
	}
	return rawArray(c.Content)
}

// Settings returns config.settings, or empty settings when absent or not an
// object.
func (c GameCreation) Settings() Settings {
	if c.Config == nil || len(c.Config.Settings) == 0 {
		return Settings{}
	}
	var s Settings
	if err := json.Unmarshal(c.Config.Settings, &s); err != nil || s == nil {
		return Settings{}
	}
	return s
}

func rawArray(data json.RawMessage) []json.RawMessage {
	if len(data) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	return items
}

// Settings is the open settings object of a creation.
type Settings map[string]json.RawMessage

// Bool reports the boolean value at key and whether it was set. The strings
// "true" and "false" are accepted as well.
func (s Settings) Bool(key string) (bool, bool) {
	raw, ok := s[key]
	if !ok {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, true
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if b, err := strconv.ParseBool(strings.TrimSpace(str)); err == nil {
			return b, true
		}
	}
	return false, false
}

// FoldCase reports whether answers are compared case-insensitively. Only an
// explicit allowLowercase=false turns folding off.
func (s Settings) FoldCase() bool {
	v, ok := s.Bool("allowLowercase")
	return !ok || v
}

// StringList decodes either a JSON array of strings or a comma-separated
// string. Entries are trimmed and empty entries dropped.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		list = strings.Split(s, ",")
	}
	out := make(StringList, 0, len(list))
	for _, v := range list {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	*l = out
	return nil
}

// FlexInt decodes a JSON number or a numeric string.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	var i int
	if err := json.Unmarshal(data, &i); err == nil {
		*n = FlexInt(i)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*n = FlexInt(i)
	return nil
}
