package service

import (
	"errors"
	"testing"
)

func TestNormalizeJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"whitespace", "{\n  \"query\": \"{ a }\" }\n", `{"query":"{ a }"}`},
		{"key order kept", `{"b":1,"a":2,"c":{"z":true,"y":null}}`, `{"b":1,"a":2,"c":{"z":true,"y":null}}`},
		{"escapes decoded", `{"s":"\/x\u0041\n"}`, `{"s":"/xA\n"}`},
		{"html not escaped", `{"q":"a<b && c>d"}`, `{"q":"a<b && c>d"}`},
		{"numbers shortest form", `[1.0,1e2,-0.50,1E-7,123456789]`, `[1,100,-0.5,1e-7,123456789]`},
		{"duplicate keys last wins", `{"a":1,"b":2,"a":3}`, `{"a":3,"b":2}`},
		{"nested arrays", `{"v":[[],[{}],[1,[2]]]}`, `{"v":[[],[{}],[1,[2]]]}`},
		{"scalar", ` "text" `, `"text"`},
		{"unicode kept", `{"name":"Zoë 数学"}`, `{"name":"Zoë 数学"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeJSON([]byte(tt.in))
			if err != nil {
				t.Fatalf("normalizeJSON() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("normalizeJSON() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNormalizeJSON_Invalid(t *testing.T) {
	for _, in := range []string{``, `   `, `{"a":`, `{"a":1} {"b":2}`, `{"a" 1}`, `[1,]`, `not json`} {
		t.Run(in, func(t *testing.T) {
			if _, err := normalizeJSON([]byte(in)); !errors.Is(err, ErrInvalidRequestBody) {
				t.Errorf("normalizeJSON(%q) error = %v, want ErrInvalidRequestBody", in, err)
			}
		})
	}
}
