package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB, ограничение для тестового корпуса
)

// builtinSeeds cover every default pattern at least once.
var builtinSeeds = []string{
	"",
	"a+1",
	"x => x * 2",
	"if (index >= MAX_SIZE) { return null; }",
	"var s = 'it\\'s' + \"q\\\"\";",
	"// line\n/* block\n comment */ a",
	"r = /ab+c/gi.test(s)",
	"n = 0x1F + 1.5e3 + .5",
	"a += b; c **= 2; d >>>= 1",
	"typeof a === 'undefined' && delete o.k",
	"été = $el._x\\y",
	"\n\n\t a \r\n b",
	"@#`",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range builtinSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.js файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".js" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
