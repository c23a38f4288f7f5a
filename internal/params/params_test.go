package params

import (
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRng() *rand.Rand { return rand.New(rand.NewSource(42)) }

func TestUniformIntBounds(t *testing.T) {
	u, err := NewUniformInt(5, 5, newRng())
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		assert.Equal(t, "5", u.Next())
	}

	u2, err := NewUniformInt(1, 3, newRng())
	require.NoError(t, err)
	for i := 0; i < 200; i++ {
		v := u2.Next()
		assert.Contains(t, []string{"1", "2", "3"}, v)
	}
}

func TestUniformIntRejectsInvertedRange(t *testing.T) {
	_, err := NewUniformInt(10, 1, newRng())
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestTruncatedNormalStaysInRange(t *testing.T) {
	tn, err := NewTruncatedNormal(50, 10, 0, 100, newRng())
	require.NoError(t, err)
	for i := 0; i < 500; i++ {
		v := tn.Next()
		assert.NotEmpty(t, v)
		f, err := strconv.ParseFloat(v, 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 100.0)
	}
}

func TestTruncatedNormalFormattingWhole(t *testing.T) {
	tn, err := NewTruncatedNormal(50, 10, 0, 100, newRng())
	require.NoError(t, err)
	v := tn.Next()
	assert.NotContains(t, v, ".")
}

func TestTruncatedNormalFormattingDecimal(t *testing.T) {
	tn, err := NewTruncatedNormal(50.5, 10, 0, 100, newRng())
	require.NoError(t, err)
	v := tn.Next()
	assert.Contains(t, v, ".")
}

func TestTruncatedNormalRejectsBadParams(t *testing.T) {
	_, err := NewTruncatedNormal(0, 0, 0, 1, newRng())
	assert.ErrorIs(t, err, ErrInvalidSource)
	_, err = NewTruncatedNormal(0, 1, 5, 5, newRng())
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestFileRoundRobinCyclesInLoadedOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "values.txt")
	require.NoError(t, os.WriteFile(path, []byte("A\nB\nC\n"), 0o644))

	rr, err := NewFileRoundRobin(path, "", 0, nil)
	require.NoError(t, err)

	var got []string
	for i := 0; i < 7; i++ {
		got = append(got, rr.Next())
	}
	assert.Equal(t, []string{"A", "B", "C", "A", "B", "C", "A"}, got)
}

func TestFileRoundRobinSkipsBlankLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "values.txt")
	require.NoError(t, os.WriteFile(path, []byte("A\n\n  \nB\n"), 0o644))

	rr, err := NewFileRoundRobin(path, "", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "A", rr.Next())
	assert.Equal(t, "B", rr.Next())
	assert.Equal(t, "A", rr.Next())
}

func TestFileRoundRobinRejectsEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	_, err := NewFileRoundRobin(path, "", 0, nil)
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestFileSourceByCSVColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "values.csv")
	content := "id,name\n1,alice\n2,bob\n3,carol\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rr, err := NewFileRoundRobin(path, "name", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, []string{rr.Next(), rr.Next(), rr.Next()})
}

func TestFileRandomDrawsFromLoadedSet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "values.txt")
	require.NoError(t, os.WriteFile(path, []byte("A\nB\nC\n"), 0o644))

	fr, err := NewFileRandom(path, "", 0, nil, newRng())
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		assert.Contains(t, []string{"A", "B", "C"}, fr.Next())
	}
}

func TestFileSourceTruncatesAtMaxLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "values.txt")
	require.NoError(t, os.WriteFile(path, []byte("A\nB\nC\nD\nE\n"), 0o644))

	rr, err := NewFileRoundRobin(path, "", 2, nil)
	require.NoError(t, err)
	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		seen[rr.Next()] = true
	}
	assert.Len(t, seen, 2)
}

func TestBuildUnknownTypeFails(t *testing.T) {
	_, err := Build(Spec{Type: "bogus"}, newRng(), nil)
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestBuildUniformFromSpec(t *testing.T) {
	s, err := Build(Spec{Type: "random", Distribution: "uniform", Min: 1, Max: 1}, newRng(), nil)
	require.NoError(t, err)
	assert.Equal(t, "1", s.Next())
}

func TestJWTSourceMintsNonEmptyToken(t *testing.T) {
	j, err := NewJWTSource("topsecret", 60_000_000_000, nil)
	require.NoError(t, err)
	a := j.Next()
	assert.NotEmpty(t, a)
}

func TestJWTSourceRejectsEmptySecret(t *testing.T) {
	_, err := NewJWTSource("", 1, nil)
	assert.ErrorIs(t, err, ErrInvalidSource)
}
