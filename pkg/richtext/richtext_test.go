package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	r := New()

	tests := []struct {
		name     string
		src      string
		contains []string
		excludes []string
	}{
		{
			name:     "emphasis",
			src:      "Una obra de *realismo mágico* escrita por **Gabriel García Márquez**.",
			contains: []string{"<em>realismo mágico</em>", "<strong>Gabriel García Márquez</strong>"},
		},
		{
			name:     "script stripped",
			src:      "Hola <script>alert(1)</script> mundo",
			excludes: []string{"<script"},
		},
		{
			name:     "javascript link stripped",
			src:      "[clic](javascript:alert(1))",
			excludes: []string{"javascript:"},
		},
		{
			name:     "links get nofollow",
			src:      "Ver https://example.com",
			contains: []string{`href="https://example.com"`, `rel="nofollow"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(r.Render(tt.src))
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, got, s)
			}
		})
	}
}

func TestRender_Empty(t *testing.T) {
	assert.Empty(t, New().Render(""))
}
