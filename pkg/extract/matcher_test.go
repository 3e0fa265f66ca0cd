package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhoneMatchers(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"call_prefix", "Need help? Call (07) 5555 1234 today", "(07) 5555 1234"},
		{"call_prefix_case_insensitive", "CALL 02 9999 8888 now", "02 9999 8888"},
		{"call_prefix_multiline_is_collapsed", "Call\n  07 5555\t1234 today", "07 5555 1234"},
		{"bare_landline", "Phone: 07-5444-1234 (reception)", "07-5444-1234 ("},
		{"too_short_call_falls_back_to_landline", "Call 12 or visit. Ph (03) 9123 4567.", "(03) 9123 4567"},
		{"call_prefix_with_nbsp", "Call\u00a0(07)\u00a05555\u00a01234", "(07) 5555 1234"},
		{"bare_landline_with_nbsp", "Ph\u00a007\u00a05444\u00a01234", "07 5444 1234"},
		{"no_phone", "Contact us online", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FirstMatch(tt.text, PhoneMatchers))
		})
	}
}

func TestFoldSpaces(t *testing.T) {
	assert.Equal(t, "a b c\nd", foldSpaces("a\u00a0b\u2003c\nd"))
	assert.Equal(t, "plain text", foldSpaces("plain text"))
}

func TestEmailMatchers(t *testing.T) {
	assert.Equal(t, "noosa@myfootdr.com.au", FirstMatch("Email: noosa@myfootdr.com.au or call", EmailMatchers))
	assert.Equal(t, "first.last@example.org", FirstMatch("a first.last@example.org b second@example.org", EmailMatchers))
	assert.Equal(t, "", FirstMatch("no email here @ all", EmailMatchers))
}

func TestAddressMatchers(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"street_suburb_state_postcode", "\n123 Main St Noosa QLD 4567\n", "123 Main St Noosa QLD 4567"},
		{"multiline_is_normalized", "Visit us\n45  King Street\n   Sydney NSW 2000\n", "45 King Street Sydney NSW 2000"},
		{"unit_prefix", "Find us: Unit 4, 17 Sunshine Beach Rd\nNoosa Heads QLD 4567.", "Unit 4, 17 Sunshine Beach Rd Noosa Heads QLD 4567"},
		{"nbsp_separated", "Visit 123\u00a0Main St Noosa QLD\u00a04567", "123 Main St Noosa QLD 4567"},
		{"narrow_nbsp_before_postcode", "9 Ocean Dr Coolum Beach QLD\u202f4573", "9 Ocean Dr Coolum Beach QLD 4573"},
		{"no_address", "We are moving soon", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FirstMatch(tt.text, AddressMatchers))
		})
	}
}

func TestCleanServiceName(t *testing.T) {
	assert.Equal(t, "Orthotics", cleanServiceName("[Orthotics](https://example.com/orthotics/)"))
	assert.Equal(t, "Podiatry", cleanServiceName("Podiatry"))
}

type stubMatcher struct {
	value string
	ok    bool
}

func (s stubMatcher) Match(string) (string, bool) { return s.value, s.ok }

func TestFirstMatch_OrderWins(t *testing.T) {
	matchers := []Matcher{stubMatcher{}, stubMatcher{"second", true}, stubMatcher{"third", true}}
	assert.Equal(t, "second", FirstMatch("", matchers))
	assert.Equal(t, "", FirstMatch("", nil))
}
