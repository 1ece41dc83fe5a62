package data

import (
	"embed"
)

// SeedModels holds the example model descriptors shipped with the
// service. The dev container runner and the tests import them from
// here instead of reading the repo tree at runtime.
//
//go:embed seed/*.json
var SeedModels embed.FS

//go:embed seed/task.json
var SeedTaskModel string

//go:embed seed/article.json
var SeedArticleModel string
