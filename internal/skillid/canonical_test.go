package skillid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const canonicalUUID = "3f2b8c1a-9d4e-4f6a-8b2c-1d0e5a7f9b3c"

func TestNormalizeKey_UUIDRenderingsConverge(t *testing.T) {
	renderings := []string{
		"3f2b8c1a-9d4e-4f6a-8b2c-1d0e5a7f9b3c",
		"3F2B8C1A-9D4E-4F6A-8B2C-1D0E5A7F9B3C",
		"3f2b8c1a9d4e4f6a8b2c1d0e5a7f9b3c",
		"3f2b8c1a 9d4e 4f6a 8b2c 1d0e5a7f9b3c",
		"  3f2b8c1a  9d4e\t4f6a 8b2c 1d0e5a7f9b3c  ",
		"3f2b8c1a9d4e-4f6a8b2c-1d0e5a7f9b3c",
	}

	for _, raw := range renderings {
		t.Run(raw, func(t *testing.T) {
			assert.Equal(t, canonicalUUID, NormalizeKey(raw))
		})
	}
}

func TestNormalizeKey_NonIdentifiers(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"plain name keeps case", "  Data Analysis ", "Data Analysis"},
		{"uri keeps case", "http://data.europa.eu/esco/skill/ABC", "http://data.europa.eu/esco/skill/ABC"},
		{"short hex is a name", "deadbeef", "deadbeef"},
		{"31 hex chars is a name", "3f2b8c1a9d4e4f6a8b2c1d0e5a7f9b3", "3f2b8c1a9d4e4f6a8b2c1d0e5a7f9b3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeKey(tt.input))
		})
	}
}

func TestNormalizeKey_Idempotent(t *testing.T) {
	inputs := []string{"Python", "3F2B8C1A9D4E4F6A8B2C1D0E5A7F9B3C", "http://x.org/a/b", " java "}
	for _, in := range inputs {
		once := NormalizeKey(in)
		assert.Equal(t, once, NormalizeKey(once), "input %q", in)
	}
}

func TestLooksLikeUUID(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{canonicalUUID, true},
		{"3f2b8c1a9d4e4f6a8b2c1d0e5a7f9b3c", true},
		{"3f2b8c1a 9d4e 4f6a 8b2c 1d0e5a7f9b3c", true},
		{"3F2B8C1A-9D4E-4F6A-8B2C-1D0E5A7F9B3C", true},
		{"Python", false},
		{"", false},
		{"3f2b8c1a-9d4e-4f6a-8b2c", false},
		{"http://data.europa.eu/esco/skill/" + canonicalUUID, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, LooksLikeUUID(tt.input))
		})
	}
}

func TestFormatLabel(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		key      string
		expected string
	}{
		{"plain name verbatim", "Data Analysis", "anything", "Data Analysis"},
		{"name trimmed", "  Python ", "", "Python"},
		{"esco uri tail is uuid", "", "http://data.europa.eu/esco/skill/" + canonicalUUID, ""},
		{"uuid key", "", canonicalUUID, ""},
		{"uuid name falls back to itself", canonicalUUID, "Python", ""},
		{"url tail with underscores", "", "https://example.org/skills/data_analysis", "data analysis"},
		{"url trailing slash", "", "https://example.org/skills/machine-learning/", "machine learning"},
		{"url with empty path uses host", "", "https://example.org", "example.org"},
		{"percent decoded", "", "https://example.org/skills/C%2B%2B", "C++"},
		{"url name overrides key", "https://example.org/skills/project_management", "ignored", "project management"},
		{"colon namespace", "", "onet:critical_thinking", "critical thinking"},
		{"path then colon", "", "taxonomy/esco:team-work", "team work"},
		{"plain key", "", "Public-Speaking", "Public Speaking"},
		{"both empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatLabel(tt.label, tt.key))
		})
	}
}

func TestIsResolvedLabel(t *testing.T) {
	assert.True(t, IsResolvedLabel("Python"))
	assert.False(t, IsResolvedLabel(""))
	assert.False(t, IsResolvedLabel("   "))
}
