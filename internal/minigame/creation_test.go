package minigame

import (
	"encoding/json"
	"testing"
)

func decodeCreation(t *testing.T, payload string) GameCreation {
	t.Helper()
	var c GameCreation
	if err := (Message{Type: TypeInitGame, Payload: json.RawMessage(payload)}).Decode(&c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return c
}

func TestGameCreationItems(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int
	}{
		{name: "config content", payload: `{"_id":"c1","config":{"content":[{"a":1},{"a":2}]}}`, want: 2},
		{name: "top-level content", payload: `{"_id":"c1","content":[{"a":1}]}`, want: 1},
		{name: "config wins", payload: `{"config":{"content":[{"a":1}]},"content":[{"a":1},{"a":2},{"a":3}]}`, want: 1},
		{name: "empty config falls back", payload: `{"config":{"content":[]},"content":[{"a":1}]}`, want: 1},
		{name: "content not an array", payload: `{"config":{"content":"nope"}}`, want: 0},
		{name: "empty payload", payload: `{}`, want: 0},
		{name: "null payload", payload: `null`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := decodeCreation(t, tt.payload)
			if got := len(c.Items()); got != tt.want {
				t.Errorf("items = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSettingsFoldCase(t *testing.T) {
	tests := []struct {
		payload string
		want    bool
	}{
		{`{}`, true},
		{`{"config":{"settings":{}}}`, true},
		{`{"config":{"settings":{"allowLowercase":true}}}`, true},
		{`{"config":{"settings":{"allowLowercase":false}}}`, false},
		{`{"config":{"settings":{"allowLowercase":"false"}}}`, false},
		{`{"config":{"settings":"garbage"}}`, true},
	}

	for _, tt := range tests {
		c := decodeCreation(t, tt.payload)
		if got := c.Settings().FoldCase(); got != tt.want {
			t.Errorf("%s: FoldCase = %v, want %v", tt.payload, got, tt.want)
		}
	}
}

func TestStringList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{`"3,4,5"`, []string{"3", "4", "5"}},
		{`" a , b ,, c "`, []string{"a", "b", "c"}},
		{`["x"," y ",""]`, []string{"x", "y"}},
		{`""`, []string{}},
	}

	for _, tt := range tests {
		var l StringList
		if err := json.Unmarshal([]byte(tt.in), &l); err != nil {
			t.Fatalf("%s: %v", tt.in, err)
		}
		if len(l) != len(tt.want) {
			t.Fatalf("%s: got %q, want %q", tt.in, l, tt.want)
		}
		for i := range l {
			if l[i] != tt.want[i] {
				t.Errorf("%s: [%d] = %q, want %q", tt.in, i, l[i], tt.want[i])
			}
		}
	}

	var l StringList
	if err := json.Unmarshal([]byte(`42`), &l); err == nil {
		t.Error("expected error for a number")
	}
}

func TestFlexInt(t *testing.T) {
	for in, want := range map[string]int{`1`: 1, `"2"`: 2, `" 3 "`: 3} {
		var n FlexInt
		if err := json.Unmarshal([]byte(in), &n); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if int(n) != want {
			t.Errorf("%s: got %d, want %d", in, n, want)
		}
	}

	var n FlexInt
	if err := json.Unmarshal([]byte(`"one"`), &n); err == nil {
		t.Error("expected error for a non-numeric string")
	}
}
