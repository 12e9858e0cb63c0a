package runtime

import (
	"bufio"
	"bytes"
	"embed"
	"io/fs"
	"strings"

	"courtside/errors"
)

//go:embed censored/*
var censoredFolder embed.FS

// CensoredData carries the result of the loading process including
// metadata for logging.
type CensoredData struct {
	Words     []string
	Languages []string
}

// LoadCensoredWords reads the embedded blacklists shipped with the
// binary. One file per language, one word per line.
func LoadCensoredWords() (*CensoredData, error) {
	return loadCensored(censoredFolder, "censored")
}

func loadCensored(f embed.FS, path string) (*CensoredData, error) {
	entries, err := fs.ReadDir(f, path)
	if err != nil {
		return nil, err
	}

	var languages []string
	uniqueWords := make(map[string]struct{})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		// Track the language based on the filename ("pt.txt" -> "pt").
		languages = append(languages, strings.TrimSuffix(entry.Name(), ".txt"))

		data, err := f.ReadFile(path + "/" + entry.Name())
		if err != nil {
			return nil, err
		}

		// A scanner handles both \n and \r\n line endings.
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				uniqueWords[line] = struct{}{}
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	if len(uniqueWords) == 0 {
		return nil, errors.ErrEmptyWords
	}

	words := make([]string, 0, len(uniqueWords))
	for w := range uniqueWords {
		words = append(words, w)
	}
	return &CensoredData{Words: words, Languages: languages}, nil
}
