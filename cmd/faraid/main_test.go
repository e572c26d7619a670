package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const family = `
owner_gender: male
estate_value: 160000
heirs:
  - {id: w, full_name: Zainab, relationship: wife}
  - {id: s1, full_name: Faiz, relationship: son}
  - {id: s2, full_name: Hakim, relationship: son}
  - {id: c, full_name: Kamal, relationship: cousin}
`

func writeFamily(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// execute runs the root command with fresh flag values.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	verbose, familyFile, estateOverride, genderOverride, jsonOutput = false, "", "", "", false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCalculate_Table(t *testing.T) {
	path := writeFamily(t, "family.yaml", family)

	out, err := execute(t, "calculate", "-f", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Estate value: 160000.00")
	assert.Contains(t, out, "20000.00")
	assert.Contains(t, out, "70000.00")
	assert.Contains(t, out, "Total: 100.00%")
	assert.Contains(t, out, "unrecognized")
}

func TestCalculate_JSONWithOverrides(t *testing.T) {
	path := writeFamily(t, "family.yaml", family)

	out, err := execute(t, "calculate", "-f", path, "--estate", "80000", "--json")
	require.NoError(t, err)

	var got struct {
		EstateValue float64 `json:"estate_value"`
		Residual    string  `json:"residual"`
		Results     []struct {
			HeirID string  `json:"heir_id"`
			Share  float64 `json:"share"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	assert.Equal(t, 80000.0, got.EstateValue)
	assert.Equal(t, "asabah", got.Residual)
	require.Len(t, got.Results, 3)
	assert.InDelta(t, 10000.0, got.Results[0].Share, 1e-6)
	assert.InDelta(t, 35000.0, got.Results[1].Share, 1e-6)
}

func TestCalculate_GenderOverrideExcludesWife(t *testing.T) {
	path := writeFamily(t, "family.yaml", family)

	out, err := execute(t, "calculate", "-f", path, "--gender", "female", "--json")
	require.NoError(t, err)

	var got struct {
		Excluded []struct {
			ID     string `json:"id"`
			Reason string `json:"reason"`
		} `json:"excluded"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	require.Len(t, got.Excluded, 2)
	assert.Equal(t, "w", got.Excluded[0].ID)
	assert.Equal(t, "spouse_mismatch", got.Excluded[0].Reason)
}

func TestCalculate_AwlWarning(t *testing.T) {
	path := writeFamily(t, "awl.json", `{
  "owner_gender": "female",
  "estate_value": 120000,
  "heirs": [
    {"id": "h", "full_name": "Osman", "relationship": "husband"},
    {"id": "a1", "full_name": "Safiyyah", "relationship": "sister"},
    {"id": "a2", "full_name": "Ruqayyah", "relationship": "sister"},
    {"id": "m", "full_name": "Halimah", "relationship": "mother"}
  ]
}`)

	out, err := execute(t, "calculate", "-f", path)

	require.NoError(t, err)
	assert.Contains(t, out, "'awl")
}

func TestCalculate_InvalidFile(t *testing.T) {
	path := writeFamily(t, "bad.yaml", "owner_gender: robot\nestate_value: -1\nheirs: []\n")

	_, err := execute(t, "calculate", "-f", path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner_gender")
	assert.Contains(t, err.Error(), "estate_value")
}

func TestCalculate_BadEstateFlag(t *testing.T) {
	path := writeFamily(t, "family.yaml", family)

	_, err := execute(t, "calculate", "-f", path, "--estate", "lots")
	assert.Error(t, err)
}

func TestClassify_NoEstateValueNeeded(t *testing.T) {
	path := writeFamily(t, "family.yaml", `
owner_gender: female
heirs:
  - {id: h, full_name: Yusuf, relationship: husband}
  - {id: g, full_name: Nenek, relationship: maternal grandmother}
`)

	out, err := execute(t, "classify", "-f", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Eligible heirs: 2")
	assert.Contains(t, out, "grandmother (maternal)")
}
