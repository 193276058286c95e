package slip39

import (
	_ "embed"
	"strings"
)

//go:embed wordlist.txt
var wordlistText string

var (
	wordlist  []string
	wordIndex map[string]int
)

func init() {
	wordlist = strings.Fields(wordlistText)
	if len(wordlist) != 1<<RadixBits {
		panic("slip39: embedded wordlist must contain 1024 words")
	}
	wordIndex = make(map[string]int, len(wordlist))
	for i, w := range wordlist {
		wordIndex[w] = i
	}
}

// Wordlist returns a copy of the share wordlist.
func Wordlist() []string {
	return append([]string(nil), wordlist...)
}

// Word returns the word at index i.
func Word(i int) string {
	return wordlist[i]
}

// WordIndex returns the position of word in the share wordlist.
func WordIndex(word string) (int, bool) {
	i, ok := wordIndex[word]
	return i, ok
}
