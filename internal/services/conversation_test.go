package services

import "testing"

func TestSanitizeText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"html escaped", `<script>alert("x")</script>`, "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;"},
		{"unix newline", "a\nb", "a<br />b"},
		{"windows newline", "a\r\nb", "a<br />b"},
		{"mixed", "a\r\nb\nc", "a<br />b<br />c"},
		{"ampersand", "fish & chips", "fish &amp; chips"},
	}
	for _, tc := range cases {
		if got := SanitizeText(tc.in); got != tc.want {
			t.Errorf("%s: SanitizeText(%q)=%q want %q", tc.name, tc.in, got, tc.want)
		}
	}
}
