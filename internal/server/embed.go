package server

import (
	"embed"
	"log"
)

//go:embed dist/index.html
var embedFS embed.FS

// getIndexHTML returns the index.html content as bytes
func getIndexHTML() []byte {
	data, err := embedFS.ReadFile("dist/index.html")
	if err != nil {
		log.Fatalf("埋め込みindex.htmlの読み込みに失敗: %v", err)
	}
	return data
}
