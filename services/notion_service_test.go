package services

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github/devansh/notebook-rag/models"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNotionPages struct {
	titles   map[string]string
	failed   map[string]bool
	getCalls map[string]int
}

func (s *stubNotionPages) Get(ctx context.Context, id notionapi.PageID) (*notionapi.Page, error) {
	if s.getCalls == nil {
		s.getCalls = make(map[string]int)
	}
	s.getCalls[string(id)]++
	if s.failed[string(id)] {
		return nil, errors.New("notion: page fetch failed")
	}
	return &notionapi.Page{
		Properties: notionapi.Properties{
			"title": &notionapi.TitleProperty{
				Title: []notionapi.RichText{{PlainText: s.titles[string(id)]}},
			},
		},
	}, nil
}

// stubNotionBlocks serves one block per call to exercise the
// has_more/cursor pagination path.
type stubNotionBlocks struct {
	blocks map[string][]notionapi.Block
}

func (s *stubNotionBlocks) GetChildren(ctx context.Context, id notionapi.BlockID, pagination *notionapi.Pagination) (*notionapi.GetChildrenResponse, error) {
	all := s.blocks[string(id)]
	start := 0
	if pagination != nil && pagination.StartCursor != "" {
		parsed, err := strconv.Atoi(string(pagination.StartCursor))
		if err != nil {
			return nil, err
		}
		start = parsed
	}
	if start >= len(all) {
		return &notionapi.GetChildrenResponse{}, nil
	}
	return &notionapi.GetChildrenResponse{
		Results:    notionapi.Blocks{all[start]},
		HasMore:    start+1 < len(all),
		NextCursor: strconv.Itoa(start + 1),
	}, nil
}

func paragraphBlock(text string) notionapi.Block {
	return &notionapi.ParagraphBlock{
		Paragraph: notionapi.Paragraph{
			RichText: []notionapi.RichText{{PlainText: text}},
		},
	}
}

func codeBlock(code string) notionapi.Block {
	return &notionapi.CodeBlock{
		Code: notionapi.Code{
			RichText: []notionapi.RichText{{PlainText: code}},
		},
	}
}

func childPageBlock(id, title string) notionapi.Block {
	block := &notionapi.ChildPageBlock{
		BasicBlock: notionapi.BasicBlock{ID: notionapi.BlockID(id)},
	}
	block.ChildPage.Title = title
	return block
}

func newStubNotionService(pages *stubNotionPages, blocks *stubNotionBlocks, root string) *NotionService {
	return &NotionService{pages: pages, blocks: blocks, rootPageID: root}
}

func TestNotionTraversalVisitsChildPages(t *testing.T) {
	pages := &stubNotionPages{titles: map[string]string{"A": "Root", "B": "Design Notes"}}
	blocks := &stubNotionBlocks{blocks: map[string][]notionapi.Block{
		"A": {
			paragraphBlock("Welcome to the workspace."),
			childPageBlock("B", "Design Notes"),
		},
		"B": {
			paragraphBlock("The retriever maps children to parents."),
		},
	}}

	docs := newStubNotionService(pages, blocks, "A").CollectPages(context.Background())
	require.Len(t, docs, 2)
	assert.Equal(t, "Root", docs[0].Metadata[models.MetaSource])
	assert.Equal(t, models.SourceKindNotion, docs[0].Metadata[models.MetaKind])
	assert.Contains(t, docs[1].PageContent, "maps children to parents")
}

func TestNotionTraversalTerminatesOnCycle(t *testing.T) {
	pages := &stubNotionPages{titles: map[string]string{"A": "Page A", "B": "Page B"}}
	blocks := &stubNotionBlocks{blocks: map[string][]notionapi.Block{
		"A": {paragraphBlock("a content"), childPageBlock("B", "Page B")},
		"B": {paragraphBlock("b content"), childPageBlock("A", "Page A")},
	}}

	docs := newStubNotionService(pages, blocks, "A").CollectPages(context.Background())
	require.Len(t, docs, 2)
	assert.Equal(t, 1, pages.getCalls["A"], "page A visited more than once")
	assert.Equal(t, 1, pages.getCalls["B"], "page B visited more than once")
}

func TestNotionPerPageErrorsAreTolerated(t *testing.T) {
	pages := &stubNotionPages{
		titles: map[string]string{"A": "Root", "B": "Broken", "C": "Healthy"},
		failed: map[string]bool{"B": true},
	}
	blocks := &stubNotionBlocks{blocks: map[string][]notionapi.Block{
		"A": {
			paragraphBlock("root content"),
			childPageBlock("B", "Broken"),
			childPageBlock("C", "Healthy"),
		},
		"C": {paragraphBlock("still reachable")},
	}}

	docs := newStubNotionService(pages, blocks, "A").CollectPages(context.Background())
	require.Len(t, docs, 2)
	assert.Contains(t, docs[1].PageContent, "still reachable")
}

func TestNotionCodeBlocksAreFenced(t *testing.T) {
	pages := &stubNotionPages{titles: map[string]string{"A": "Snippets"}}
	blocks := &stubNotionBlocks{blocks: map[string][]notionapi.Block{
		"A": {
			paragraphBlock("Example usage:"),
			codeBlock("func main() {}"),
		},
	}}

	docs := newStubNotionService(pages, blocks, "A").CollectPages(context.Background())
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].PageContent, "```\nfunc main() {}\n```")
}

func TestNotionEmptyPageYieldsNoDocument(t *testing.T) {
	pages := &stubNotionPages{titles: map[string]string{"A": "Empty"}}
	blocks := &stubNotionBlocks{blocks: map[string][]notionapi.Block{}}

	docs := newStubNotionService(pages, blocks, "A").CollectPages(context.Background())
	assert.Empty(t, docs)
}

func TestExtractTextFromBlockTypes(t *testing.T) {
	todo := &notionapi.ToDoBlock{
		ToDo: notionapi.ToDo{RichText: []notionapi.RichText{{PlainText: "ship it"}}},
	}
	assert.Equal(t, "ship it\n", extractTextFromBlock(todo))

	quote := &notionapi.QuoteBlock{
		Quote: notionapi.Quote{RichText: []notionapi.RichText{{PlainText: "measure twice"}}},
	}
	assert.Equal(t, "measure twice\n", extractTextFromBlock(quote))

	heading := &notionapi.Heading2Block{
		Heading2: notionapi.Heading{RichText: []notionapi.RichText{{PlainText: "Design"}}},
	}
	assert.Equal(t, "Design\n", extractTextFromBlock(heading))

	assert.Empty(t, extractTextFromBlock(paragraphBlock("")))
}
