package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github/devansh/notebook-rag/models"

	"github.com/jomei/notionapi"
)

// notionPageGetter and notionBlockLister are the two slices of the Notion
// API the collector needs. The jomei client satisfies both.
type notionPageGetter interface {
	Get(ctx context.Context, id notionapi.PageID) (*notionapi.Page, error)
}

type notionBlockLister interface {
	GetChildren(ctx context.Context, id notionapi.BlockID, pagination *notionapi.Pagination) (*notionapi.GetChildrenResponse, error)
}

// NotionService walks a Notion page tree breadth-first and turns each
// visited page into a Document.
type NotionService struct {
	pages      notionPageGetter
	blocks     notionBlockLister
	rootPageID string
}

// NewNotionService creates a service backed by the Notion HTTP API.
func NewNotionService(token, rootPageID string) *NotionService {
	client := notionapi.NewClient(notionapi.Token(token))
	return &NotionService{
		pages:      client.Page,
		blocks:     client.Block,
		rootPageID: rootPageID,
	}
}

type queuedPage struct {
	id    string
	title string
}

// CollectPages traverses the page tree starting from the root page.
// A visited set guards against cycles and duplicate links; per-page
// failures are logged and traversal continues with the remaining queue.
func (s *NotionService) CollectPages(ctx context.Context) []models.Document {
	log.Printf("NOTION: Scanning workspace from root page %s...", s.rootPageID)

	var docs []models.Document
	queue := []queuedPage{{id: s.rootPageID, title: "Root Page"}}
	visited := make(map[string]bool)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current.id] {
			continue
		}
		visited[current.id] = true

		doc, children, err := s.visitPage(ctx, current)
		if err != nil {
			log.Printf("NOTION ERROR: Failed to process page %s: %v", current.id, err)
			continue
		}
		if doc != nil {
			docs = append(docs, *doc)
		}
		queue = append(queue, children...)
	}

	log.Printf("NOTION: Loaded %d pages.", len(docs))
	return docs
}

// visitPage fetches one page's title and content and discovers its child
// pages. A nil document means the page had no text worth keeping.
func (s *NotionService) visitPage(ctx context.Context, current queuedPage) (*models.Document, []queuedPage, error) {
	title := current.title
	page, err := s.pages.Get(ctx, notionapi.PageID(current.id))
	if err != nil {
		return nil, nil, fmt.Errorf("could not retrieve page: %w", err)
	}
	if t := pageTitle(page); t != "" {
		title = t
	}
	log.Printf("NOTION: Processing page '%s'", title)

	var content strings.Builder
	var children []queuedPage
	cursor := notionapi.Cursor("")
	for {
		pagination := &notionapi.Pagination{PageSize: 100}
		if cursor != "" {
			pagination.StartCursor = cursor
		}
		resp, err := s.blocks.GetChildren(ctx, notionapi.BlockID(current.id), pagination)
		if err != nil {
			return nil, nil, fmt.Errorf("could not list blocks: %w", err)
		}

		for _, block := range resp.Results {
			if text := extractTextFromBlock(block); text != "" {
				content.WriteString(text)
			}
			if child, ok := block.(*notionapi.ChildPageBlock); ok {
				childTitle := child.ChildPage.Title
				if childTitle == "" {
					childTitle = "Untitled"
				}
				children = append(children, queuedPage{
					id:    string(child.GetID()),
					title: childTitle,
				})
			}
		}

		if !resp.HasMore {
			break
		}
		cursor = notionapi.Cursor(resp.NextCursor)
	}

	if strings.TrimSpace(content.String()) == "" {
		return nil, children, nil
	}

	return &models.Document{
		PageContent: content.String(),
		Metadata: map[string]interface{}{
			models.MetaSource: title,
			models.MetaKind:   models.SourceKindNotion,
		},
	}, children, nil
}

// extractTextFromBlock pulls plain text out of the common block types.
// Code blocks are wrapped in fenced-code markers so chunk boundaries keep
// them recognizable.
func extractTextFromBlock(block notionapi.Block) string {
	switch b := block.(type) {
	case *notionapi.ParagraphBlock:
		return richTextLine(b.Paragraph.RichText)
	case *notionapi.Heading1Block:
		return richTextLine(b.Heading1.RichText)
	case *notionapi.Heading2Block:
		return richTextLine(b.Heading2.RichText)
	case *notionapi.Heading3Block:
		return richTextLine(b.Heading3.RichText)
	case *notionapi.BulletedListItemBlock:
		return richTextLine(b.BulletedListItem.RichText)
	case *notionapi.NumberedListItemBlock:
		return richTextLine(b.NumberedListItem.RichText)
	case *notionapi.ToDoBlock:
		return richTextLine(b.ToDo.RichText)
	case *notionapi.ToggleBlock:
		return richTextLine(b.Toggle.RichText)
	case *notionapi.QuoteBlock:
		return richTextLine(b.Quote.RichText)
	case *notionapi.CalloutBlock:
		return richTextLine(b.Callout.RichText)
	case *notionapi.CodeBlock:
		code := plainText(b.Code.RichText)
		if code == "" {
			return ""
		}
		return fmt.Sprintf("\n```\n%s\n```\n", code)
	default:
		return ""
	}
}

func richTextLine(rt []notionapi.RichText) string {
	text := plainText(rt)
	if text == "" {
		return ""
	}
	return text + "\n"
}

func plainText(rt []notionapi.RichText) string {
	var sb strings.Builder
	for _, t := range rt {
		sb.WriteString(t.PlainText)
	}
	return sb.String()
}

// pageTitle finds the page's title property.
func pageTitle(page *notionapi.Page) string {
	for _, prop := range page.Properties {
		if title, ok := prop.(*notionapi.TitleProperty); ok {
			if t := plainText(title.Title); t != "" {
				return t
			}
		}
	}
	return ""
}
