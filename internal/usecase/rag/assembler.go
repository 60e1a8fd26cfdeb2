package rag

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/askdex/internal/domain/document"
)

// Context assembly limits.
const (
	// usableContentChars is the minimum trimmed content length for a
	// document to contribute an excerpt block.
	usableContentChars = 50
	// excerptChars caps each document excerpt inside the context.
	excerptChars = 1000
)

const blockSeparator = "\n---\n\n"

const analysisPrompt = `You are an expert document analysis assistant. Analyze the provided documents and answer the user's question comprehensively.

Guidelines:
- Use specific information from the documents
- Cite documents when referencing information (e.g., "According to Document 1...")
- If information is incomplete, mention what additional details might be helpful
- Structure your response clearly with headings when appropriate

Available Documents:
`

const guidancePrompt = `You are a document discovery assistant. The documents matching the query could not be read as text, so only their metadata is available.

Guidelines:
- Describe what each document likely contains based on its title, type, and category
- Suggest how the user might access the files to read their content
- Never invent or quote document content you have not seen

Available Documents:
`

// assembly is the generation input prepared from retrieved documents. The
// fallback flag drives the confidence band downstream.
type assembly struct {
	systemPrompt string
	context      string
	fallback     bool
	usable       int
}

// assemble builds the generation context. Documents with usable content get
// excerpt blocks under the analysis prompt; when none qualify, every
// retrieved document gets a metadata-only block under the guidance prompt.
func assemble(docs []document.Document) assembly {
	usable := make([]document.Document, 0, len(docs))
	for _, d := range docs {
		if len(strings.TrimSpace(d.Content())) > usableContentChars {
			usable = append(usable, d)
		}
	}

	if len(usable) == 0 {
		ctx := joinBlocks(docs, fallbackBlock)
		return assembly{systemPrompt: guidancePrompt + ctx, context: ctx, fallback: true}
	}

	ctx := joinBlocks(usable, richBlock)
	return assembly{systemPrompt: analysisPrompt + ctx, context: ctx, usable: len(usable)}
}

func joinBlocks(docs []document.Document, block func(int, document.Document) string) string {
	blocks := make([]string, len(docs))
	for i, d := range docs {
		blocks[i] = block(i+1, d)
	}
	return strings.Join(blocks, blockSeparator)
}

func richBlock(i int, d document.Document) string {
	return fmt.Sprintf("[Document %d: \"%s\"]\nAuthor: %s\nType: %s\nCategory: %s\nContent: %s\n",
		i, d.Title(), d.Author(), d.Type(), d.Category(), excerpt(d.Content()))
}

func fallbackBlock(i int, d document.Document) string {
	return fmt.Sprintf("[Document %d: \"%s\"]\nAuthor: %s\nType: %s\nCategory: %s\nNote: Text content not accessible for this %s file.\n",
		i, d.Title(), d.Author(), d.Type(), d.Category(), d.Type())
}

// excerpt caps content at excerptChars bytes without splitting a rune.
func excerpt(content string) string {
	if len(content) <= excerptChars {
		return content
	}
	cut := excerptChars
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + "..."
}
