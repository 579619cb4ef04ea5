package corpus

import (
	"errors"
	"os"
	"slices"
	"strings"
	"testing"

	helpers "github.com/launchdarkly/go-test-helpers/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values(seq func(func(Case) bool)) []string {
	var ret []string
	for cs := range seq {
		ret = append(ret, cs.Value())
	}
	return ret
}

func TestDefaultCorpusBuilds(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	for cs := range c.All() {
		expected, err := cs.Category().Outcome()
		require.NoError(t, err)
		assert.Equal(t, expected, cs.Expected(), cs.Rationale())
	}
	for _, category := range Categories {
		assert.NotEmpty(t, values(c.InCategory(category)), "category %s is empty", category)
	}
}

func TestDefaultCorpusContainsFixtureCases(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	for value, expected := range map[string]Outcome{
		"kontur_course_hi@mail.ru":               Accepted,
		"":                                       Rejected,
		"kontur_course_hi@mail@sobaka.ru":        Rejected,
		`kontur_course_hi@mail_nesobaka.ru"Hehe`: Rejected,
		"a@mail.ru'); DROP TABLE Emails":         Rejected,
		"a@a.a<script>alert(XXX)</script>":       Rejected,
	} {
		outcome, ok := c.Classify(value)
		require.True(t, ok, "missing %q", value)
		assert.Equal(t, expected, outcome, value)
	}

	var longest string
	for cs := range c.Rejected() {
		if len(cs.Value()) > len(longest) {
			longest = cs.Value()
		}
	}
	assert.Greater(t, len(longest), 254)
}

func TestAcceptedAndRejectedPartitionTheCorpus(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	accepted := values(c.Accepted())
	rejected := values(c.Rejected())
	assert.Equal(t, c.Len(), len(accepted)+len(rejected))
	for _, v := range accepted {
		assert.NotContains(t, rejected, v)
	}
	assert.Equal(t, values(c.All()), append(slices.Clone(accepted), rejected...),
		"default corpus lists accepted cases first")
}

func TestSequencesAreRestartable(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	seq := c.Rejected()
	assert.Equal(t, values(seq), values(seq))

	n := 0
	for range seq {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestDuplicateValueFailsBuild(t *testing.T) {
	_, err := New(
		NewCase(BaselineValid, "a@b.co", "short"),
		NewCase(BaselineInvalid, "a@b.co", "same value, other label"),
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorpusBuild))

	var dup *DuplicateCaseError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "value", dup.Field)
	assert.Equal(t, "short", dup.First.Rationale())
	assert.Equal(t, "same value, other label", dup.Second.Rationale())
}

func TestDuplicateRationaleFailsBuild(t *testing.T) {
	_, err := New(
		NewCase(BaselineValid, "a@b.co", "short"),
		NewCase(BaselineValid, "c@d.co", "short"),
	)
	var dup *DuplicateCaseError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "rationale", dup.Field)
}

func TestMalformedCasesFailBuild(t *testing.T) {
	_, err := New(NewCase("bogus", "a@b.co", "unknown category"))
	assert.True(t, errors.Is(err, ErrCorpusBuild))

	_, err = New(NewCase(BaselineValid, "a@b.co", ""))
	assert.True(t, errors.Is(err, ErrCorpusBuild))
}

func TestMustNewPanicsOnDuplicate(t *testing.T) {
	assert.Panics(t, func() {
		MustNew(NewCase(BaselineValid, "x@y.z", "one"), NewCase(BaselineValid, "x@y.z", "two"))
	})
}

func TestMerge(t *testing.T) {
	base, err := Default()
	require.NoError(t, err)

	extra := MustNew(NewCase(EdgeValid, "o'brien@example.com", "apostrophe in local part"))
	merged, err := base.Merge(extra)
	require.NoError(t, err)
	assert.Equal(t, base.Len()+1, merged.Len())

	_, err = merged.Merge(extra)
	assert.True(t, errors.Is(err, ErrCorpusBuild))
}

func TestLoad(t *testing.T) {
	data := `[
		{"value": "", "category": "baseline-invalid", "rationale": "nothing typed"},
		{"value": "x@example.org", "category": "baseline-valid", "rationale": "plain"}
	]`
	helpers.WithTempFileData([]byte(data), func(path string) {
		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()

		c, err := Load(f)
		require.NoError(t, err)
		assert.Equal(t, []string{"", "x@example.org"}, values(c.All()))

		cs, ok := c.Lookup("")
		require.True(t, ok)
		assert.True(t, cs.IsEmpty())
		assert.Equal(t, Rejected, cs.Expected())
	})
}

func TestLoadErrors(t *testing.T) {
	for name, data := range map[string]string{
		"not JSON":         `{`,
		"missing value":    `[{"category": "baseline-valid", "rationale": "r"}]`,
		"unknown category": `[{"value": "a@b.c", "category": "maybe", "rationale": "r"}]`,
		"unknown field":    `[{"value": "a@b.c", "category": "baseline-valid", "rationale": "r", "x": 1}]`,
		"duplicate value": `[{"value": "a@b.c", "category": "baseline-valid", "rationale": "r1"},
			{"value": "a@b.c", "category": "baseline-invalid", "rationale": "r2"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(data))
			assert.True(t, errors.Is(err, ErrCorpusBuild), "got %v", err)
		})
	}
}
