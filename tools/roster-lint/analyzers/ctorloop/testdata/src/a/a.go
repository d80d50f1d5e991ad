package a

import "regexp"

type collator struct{}

type tag string

// collate stands in for golang.org/x/text/collate.
var collate = struct {
	New func(tag) *collator
}{
	New: func(tag) *collator { return &collator{} },
}

func badRegexp(texts []string) {
	for _, text := range texts {
		re := regexp.MustCompile(`\d+`) // want "regexp.MustCompile called inside loop"
		_ = re.FindAllString(text, -1)
	}
}

func badCollator(names []string) {
	for range names {
		_ = collate.New("en") // want "collate.New called inside loop"
	}
}

var globalRe = regexp.MustCompile(`\d+`)

func good(texts []string) {
	c := collate.New("en")
	for _, text := range texts {
		_ = globalRe.FindAllString(text, -1)
	}
	_ = c
}
