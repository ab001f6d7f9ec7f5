package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/tsproptypes/pkg/analyzer"
	"github.com/gnana997/tsproptypes/pkg/proptypes"
	"github.com/gnana997/tsproptypes/pkg/util"
)

const typesSource = `
export interface BaseProps {
  /** Extra class names. */
  className?: string;
}
`

const buttonSource = `
import { BaseProps } from './types';
export interface ButtonProps extends BaseProps {
  variant: 'text' | 'contained';
}
export function Button(props: ButtonProps) {
  return <button />;
}
`

const chipSource = `
export const Chip = (props: { label: string }) => <span />;
`

func newTestScanner(t *testing.T) *Scanner {
	t.Helper()
	s, err := NewScanner(Options{Logger: util.Discard()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func writeLibrary(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	writeFile(t, tmp, "types.ts", typesSource)
	writeFile(t, tmp, "Button.tsx", buttonSource)
	writeFile(t, tmp, "Chip.tsx", chipSource)
	return tmp
}

func testConfig() ScanConfig {
	cfg := DefaultScanConfig()
	cfg.Workers = 2
	cfg.Analyzer.Logger = util.Discard()
	return cfg
}

func componentsOf(r *ScanResult) []string {
	var names []string
	for _, p := range r.Programs() {
		for _, c := range p.Components {
			names = append(names, c.Name)
		}
	}
	return names
}

func TestScanner_Run(t *testing.T) {
	root := writeLibrary(t)
	s := newTestScanner(t)

	result, err := s.Run(context.Background(), root, testConfig())
	require.NoError(t, err)

	require.Len(t, result.Files, 3)
	assert.Equal(t, []string{"Button.tsx", "Chip.tsx", "types.ts"}, fileNames([]string{
		result.Files[0].File, result.Files[1].File, result.Files[2].File,
	}))
	assert.Equal(t, []string{"Button", "Chip"}, componentsOf(result))

	button := result.Files[0].Program.Component("Button")
	require.NotNil(t, button)
	assert.Equal(t, proptypes.NewUnion(
		proptypes.LiteralType{Value: `"text"`},
		proptypes.LiteralType{Value: `"contained"`},
	), button.Prop("variant").Type)
	assert.Equal(t, "Extra class names.", button.Prop("className").Doc)
	assert.Equal(t, []string{filepath.Join(root, "types.ts")}, button.Prop("className").FileNames)

	assert.Equal(t, 3, result.Stats.FilesDiscovered)
	assert.Equal(t, 3, result.Stats.FilesParsed)
	assert.Equal(t, 0, result.Stats.FilesFailed)
	assert.Equal(t, 2, result.Stats.Components)
}

func TestScanner_ResultCache(t *testing.T) {
	root := writeLibrary(t)
	s := newTestScanner(t)
	cfg := testConfig()

	first, err := s.Run(context.Background(), root, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Stats.CacheHits)
	assert.Equal(t, 3, s.CachedResults())

	second, err := s.Run(context.Background(), root, cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, second.Stats.CacheHits)
	assert.True(t, second.Files[0].Cached)
	assert.Same(t, first.Files[0].Program, second.Files[0].Program)

	// A changed file changes every key, since files may depend on each other.
	chip := filepath.Join(root, "Chip.tsx")
	require.NoError(t, os.WriteFile(chip, []byte(`export const Chip = (props: { size: number }) => <span />;`), 0o644))
	s.Invalidate(chip)

	third, err := s.Run(context.Background(), root, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, third.Stats.CacheHits)
	assert.Equal(t, proptypes.NumberType{}, third.Files[1].Program.Component("Chip").Prop("size").Type)
}

func largeChipSource() string {
	var b strings.Builder
	b.WriteString("export interface ChipProps {\n")
	for i := 0; i < 900; i++ {
		fmt.Fprintf(&b, "  /** Slot %d. */\n  slot%d?: string;\n", i, i)
	}
	b.WriteString("}\nexport const Chip = (props: ChipProps) => <span />;\n")
	return b.String()
}

func TestScanner_RereadsFileShrunkInPlace(t *testing.T) {
	root := writeLibrary(t)
	writeFile(t, root, "Chip.tsx", largeChipSource())
	chip := filepath.Join(root, "Chip.tsx")
	s := newTestScanner(t)
	cfg := testConfig()
	files := []string{filepath.Join(root, "types.ts"), chip}

	first, err := s.ParseFiles(context.Background(), files, cfg)
	require.NoError(t, err)
	require.NotNil(t, first.Files[1].Program.Component("Chip").Prop("slot899"))

	// Same inode, shorter contents.
	require.NoError(t, os.WriteFile(chip, []byte(`export const Chip = (props: { tone: number }) => <span />;`), 0o644))

	second, err := s.ParseFiles(context.Background(), files, cfg)
	require.NoError(t, err)
	require.NoError(t, second.Files[1].Err)
	assert.False(t, second.Files[1].Cached)
	component := second.Files[1].Program.Component("Chip")
	require.NotNil(t, component)
	assert.Nil(t, component.Prop("slot899"))
	assert.Equal(t, proptypes.NumberType{}, component.Prop("tone").Type)

	stats := s.files.Stats()
	assert.Equal(t, int64(1), stats.Reloads)
	assert.Equal(t, 0, stats.Retired)
}

func TestScanner_RereadsFileReplacedByRename(t *testing.T) {
	root := writeLibrary(t)
	chip := filepath.Join(root, "Chip.tsx")
	s := newTestScanner(t)
	cfg := testConfig()

	first, err := s.Run(context.Background(), root, cfg)
	require.NoError(t, err)
	require.NotNil(t, first.Files[1].Program.Component("Chip").Prop("label"))

	writeFile(t, root, "Chip.tsx.tmp", `export const Chip = (props: { label: number }) => <span />;`)
	require.NoError(t, os.Rename(filepath.Join(root, "Chip.tsx.tmp"), chip))

	second, err := s.Run(context.Background(), root, cfg)
	require.NoError(t, err)
	assert.False(t, second.Files[1].Cached)
	assert.Equal(t, proptypes.NumberType{}, second.Files[1].Program.Component("Chip").Prop("label").Type)
}

func TestScanner_ParseFiles_MissingFile(t *testing.T) {
	root := writeLibrary(t)
	s := newTestScanner(t)

	result, err := s.ParseFiles(context.Background(), []string{
		filepath.Join(root, "Chip.tsx"),
		filepath.Join(root, "Missing.tsx"),
	}, testConfig())
	require.NoError(t, err)

	require.Len(t, result.Files, 2)
	assert.NoError(t, result.Files[0].Err)
	assert.Error(t, result.Files[1].Err)
	assert.Equal(t, 1, result.Stats.FilesParsed)
	assert.Equal(t, 1, result.Stats.FilesFailed)
	assert.Equal(t, []string{"Chip"}, componentsOf(result))
}

func TestScanner_Canceled(t *testing.T) {
	root := writeLibrary(t)
	s := newTestScanner(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Run(ctx, root, testConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanner_EmptyDirectory(t *testing.T) {
	s := newTestScanner(t)

	result, err := s.Run(context.Background(), t.TempDir(), testConfig())
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.Empty(t, result.Programs())
}

func TestWatcher_RescanOnChange(t *testing.T) {
	root := writeLibrary(t)
	s := newTestScanner(t)

	events := make(chan WatchEvent, 4)
	w, err := NewWatcher(s, root, WatchOptions{
		Config:   testConfig(),
		Debounce: 20 * time.Millisecond,
		Logger:   util.Discard(),
	}, func(ev WatchEvent) { events <- ev })
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	chip := filepath.Join(root, "Chip.tsx")
	require.NoError(t, os.WriteFile(chip, []byte(`export const Chip = (props: { color: string }) => <span />;`), 0o644))
	w.schedule(chip)
	w.schedule(chip)

	select {
	case ev := <-events:
		require.NoError(t, ev.Err)
		assert.Equal(t, []string{chip}, ev.Changed)
		var found bool
		for _, f := range ev.Result.Files {
			if f.File == chip {
				found = true
				require.NotNil(t, f.Program.Component("Chip"))
				assert.NotNil(t, f.Program.Component("Chip").Prop("color"))
			}
		}
		assert.True(t, found)
	case <-time.After(10 * time.Second):
		t.Fatal("no rescan after change")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	s := newTestScanner(t)
	w, err := NewWatcher(s, t.TempDir(), WatchOptions{Config: testConfig(), Logger: util.Discard()}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
	assert.Error(t, w.Start())
	assert.Equal(t, 0, w.Pending())
}

func TestScanner_ParseTargets(t *testing.T) {
	root := writeLibrary(t)
	s := newTestScanner(t)
	button := filepath.Join(root, "Button.tsx")
	types := filepath.Join(root, "types.ts")

	result, err := s.ParseTargets(context.Background(), []string{button}, []string{types, button}, testConfig())
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	require.NoError(t, result.Files[0].Err)
	assert.Equal(t, "Extra class names.", result.Files[0].Program.Component("Button").Prop("className").Doc)

	// Without the related file the import is unresolved and the prop is lost.
	alone, err := s.ParseFiles(context.Background(), []string{button}, testConfig())
	require.NoError(t, err)
	assert.Nil(t, alone.Files[0].Program.Component("Button").Prop("className"))
}

func TestScanner_OptionsKeySeparatesCache(t *testing.T) {
	root := writeLibrary(t)
	s := newTestScanner(t)
	cfg := testConfig()

	_, err := s.Run(context.Background(), root, cfg)
	require.NoError(t, err)

	cfg.OptionsKey = "exclude=variant"
	cfg.Analyzer.ShouldInclude = func(ctx analyzer.IncludeContext) analyzer.Decision {
		if ctx.Name == "variant" {
			return analyzer.Reject
		}
		return analyzer.Undecided
	}
	result, err := s.Run(context.Background(), root, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Stats.CacheHits)
	assert.Nil(t, result.Files[0].Program.Component("Button").Prop("variant"))
}
