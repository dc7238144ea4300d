package trie

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteStrings_OpenDict(t *testing.T) {
	ix := buildIndex(t, []string{"가", "가다", "간"}, []string{"v1", "v2", "세번째"})
	stem := filepath.Join(t.TempDir(), "morph")
	require.NoError(t, WriteStrings(stem, Compile(ix)))

	info, err := os.Stat(stem + KeyExt)
	require.NoError(t, err)
	assert.Equal(t, int64(4*RecordSize), info.Size())

	raw, err := os.ReadFile(stem + KeyExt)
	require.NoError(t, err)
	// Вторая запись (가): символ, индекс значения 0, смещение 2, один ребенок.
	assert.Equal(t, uint32('가'), binary.LittleEndian.Uint32(raw[16:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(raw[20:]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(raw[24:]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(raw[28:]))

	d, err := OpenDict(stem + KeyExt)
	require.NoError(t, err)
	defer d.Close()

	values, err := OpenStringValues(stem + ValueExt)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "세번째", "v2"}, values)
	assert.Equal(t, len(values), d.ValueCount())

	idx, ok := d.Find("간")
	require.True(t, ok)
	assert.Equal(t, "세번째", values[idx])

	_, ok = d.Find("가나")
	assert.False(t, ok)

	matches := d.CommonPrefixMatches("가다가")
	require.Len(t, matches, 2)
	assert.Equal(t, "v2", values[matches[1].ValueIdx])
}

func TestWriteFloats(t *testing.T) {
	ix := buildIndex(t, []string{"Afoo", "Bbar"}, []float32{0.5, -1.25})
	stem := filepath.Join(t.TempDir(), "state_feat")
	require.NoError(t, WriteFloats(stem, Compile(ix)))

	values, err := OpenFloatValues(stem + ValueExt)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -1.25}, values)

	d, err := OpenDict(stem + KeyExt)
	require.NoError(t, err)
	defer d.Close()

	idx, ok := d.Find("Bbar")
	require.True(t, ok)
	assert.Equal(t, float32(-1.25), values[idx])
}

func TestWriteDict_NoPartialFiles(t *testing.T) {
	dir := t.TempDir()
	stem := filepath.Join(dir, "broken")
	err := writeDict(stem, Compile(NewIndex[int]()).Records, func(w io.Writer) error {
		return io.ErrShortWrite
	})
	require.ErrorIs(t, err, io.ErrShortWrite)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteDict_MissingDir(t *testing.T) {
	stem := filepath.Join(t.TempDir(), "nope", "morph")
	assert.Error(t, WriteStrings(stem, Compile(NewIndex[string]())))
}

func TestWriteDict_KeyRenameFails(t *testing.T) {
	testCases := []struct {
		name   string
		oldVal []byte
	}{
		{name: "Прежний поток значений возвращается", oldVal: []byte("old")},
		{name: "Новый поток значений удаляется", oldVal: nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			stem := filepath.Join(dir, "morph")
			if tc.oldVal != nil {
				require.NoError(t, os.WriteFile(stem+ValueExt, tc.oldVal, 0o644))
			}
			// Каталог на месте потока ключей: файл поверх него не переименовать.
			require.NoError(t, os.MkdirAll(filepath.Join(stem+KeyExt, "busy"), 0o755))

			ix := buildIndex(t, []string{"가"}, []string{"новое"})
			require.Error(t, WriteStrings(stem, Compile(ix)))

			got, err := os.ReadFile(stem + ValueExt)
			if tc.oldVal == nil {
				assert.ErrorIs(t, err, os.ErrNotExist)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.oldVal, got)
			}

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			var names []string
			for _, e := range entries {
				names = append(names, e.Name())
			}
			want := []string{"morph.trie"}
			if tc.oldVal != nil {
				want = append(want, "morph.val")
			}
			assert.ElementsMatch(t, want, names)
		})
	}
}

func TestWriteDict_ReplacesExisting(t *testing.T) {
	stem := filepath.Join(t.TempDir(), "morph")
	require.NoError(t, WriteStrings(stem, Compile(buildIndex(t, []string{"가"}, []string{"старое"}))))
	require.NoError(t, WriteStrings(stem, Compile(buildIndex(t, []string{"나"}, []string{"новое"}))))

	values, err := OpenStringValues(stem + ValueExt)
	require.NoError(t, err)
	assert.Equal(t, []string{"новое"}, values)

	entries, err := os.ReadDir(filepath.Dir(stem))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trans_mat.bin")
	require.NoError(t, WriteAtomic(path, func(w io.Writer) error {
		_, err := w.Write([]byte{1, 2, 3, 4})
		return err
	}))

	err := WriteAtomic(path, func(w io.Writer) error {
		_, _ = w.Write([]byte{9})
		return io.ErrShortWrite
	})
	require.ErrorIs(t, err, io.ErrShortWrite)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestOpenDict_Corrupt(t *testing.T) {
	dir := t.TempDir()

	odd := filepath.Join(dir, "odd.trie")
	require.NoError(t, os.WriteFile(odd, make([]byte, 17), 0o644))
	_, err := OpenDict(odd)
	assert.ErrorIs(t, err, ErrCorrupt)

	empty := filepath.Join(dir, "empty.trie")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = OpenDict(empty)
	assert.ErrorIs(t, err, ErrCorrupt)

	// Корень ссылается на блок детей за концом файла.
	outOfRange := filepath.Join(dir, "range.trie")
	f, err := os.Create(outOfRange)
	require.NoError(t, err)
	require.NoError(t, WriteRecords(f, []Record{{ValueIdx: -1, ChildStart: 1, ChildNum: 5}}))
	require.NoError(t, f.Close())
	_, err = OpenDict(outOfRange)
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = OpenDict(filepath.Join(dir, "missing.trie"))
	assert.Error(t, err)
}

func TestReadStringValues_Truncated(t *testing.T) {
	_, err := ReadStringValues([]byte{5, 0, 0, 0, 'a'})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = ReadStringValues([]byte{1, 0})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	values, err := ReadStringValues([]byte{0, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, []string{""}, values)
}

func TestReadFloatValues_BadSize(t *testing.T) {
	_, err := ReadFloatValues([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestDict_FindList(t *testing.T) {
	keys := randomKeys(5000, 11)
	ix := NewIndex[int]()
	for i, key := range keys[:4000] {
		require.NoError(t, ix.Insert(key, i))
	}
	c := Compile(ix)
	d, err := NewDict(c.Records)
	require.NoError(t, err)

	result := d.FindList(keys)
	require.Len(t, result, len(keys))
	for i, key := range keys {
		if i < 4000 {
			require.GreaterOrEqual(t, result[i], 0, key)
			assert.Equal(t, i, c.Values[result[i]], key)
		} else {
			assert.Equal(t, -1, result[i], key)
		}
	}

	assert.Empty(t, d.FindList(nil))
	require.NoError(t, d.Close())
}

func BenchmarkDict_FindList(b *testing.B) {
	keys := randomKeys(50000, 5)
	c := Compile(buildIndex(b, keys, make([]int, len(keys))))
	d, err := NewDict(c.Records)
	require.NoError(b, err)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = d.FindList(keys)
	}
}
