package pipeline

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
)

// pageCreator is the part of notionapi.PageService the clipper needs.
type pageCreator interface {
	Create(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error)
}

// databaseCreator is the part of notionapi.DatabaseService the clipper needs.
type databaseCreator interface {
	Create(ctx context.Context, req *notionapi.DatabaseCreateRequest) (*notionapi.Database, error)
}

// NotionClipper handles clipping result records to a Notion database
type NotionClipper struct {
	pages     pageCreator
	databases databaseCreator
	dbID      notionapi.DatabaseID
}

// NewNotionClipper creates a new Notion clipper
func NewNotionClipper(token string, databaseID string) (*NotionClipper, error) {
	if token == "" {
		return nil, fmt.Errorf("NOTION_TOKEN is required")
	}

	client := notionapi.NewClient(notionapi.Token(token))
	return &NotionClipper{
		pages:     client.Page,
		databases: client.Database,
		dbID:      notionapi.DatabaseID(databaseID),
	}, nil
}

// DatabaseID returns the target database, empty until set or created.
func (nc *NotionClipper) DatabaseID() string {
	return string(nc.dbID)
}

// CreateDatabase creates a new Notion database for news clipping under pageID
// and returns its ID.
func (nc *NotionClipper) CreateDatabase(ctx context.Context, pageID string) (string, error) {
	if pageID == "" {
		return "", fmt.Errorf("NOTION_PAGE_ID is required to create a new database")
	}

	dbRequest := &notionapi.DatabaseCreateRequest{
		Parent: notionapi.Parent{
			Type:   notionapi.ParentTypePageID,
			PageID: notionapi.PageID(pageID),
		},
		Title: []notionapi.RichText{
			{Text: &notionapi.Text{Content: "News Report"}},
		},
		Properties: notionapi.PropertyConfigs{
			"Title": notionapi.TitlePropertyConfig{
				Type: notionapi.PropertyConfigTypeTitle,
			},
			"URL": notionapi.URLPropertyConfig{
				Type: notionapi.PropertyConfigTypeURL,
			},
			"Source": notionapi.RichTextPropertyConfig{
				Type: notionapi.PropertyConfigTypeRichText,
			},
		},
	}

	db, err := nc.databases.Create(ctx, dbRequest)
	if err != nil {
		return "", fmt.Errorf("failed to create Notion database: %w", err)
	}

	nc.dbID = notionapi.DatabaseID(db.ID)
	infof("Notion database created: %s", db.ID)
	return string(db.ID), nil
}

// ClipRecord clips one result record to Notion
func (nc *NotionClipper) ClipRecord(ctx context.Context, r ResultRecord) error {
	if nc.dbID == "" {
		return fmt.Errorf("database ID not set")
	}

	properties := notionapi.Properties{
		"Title": notionapi.TitleProperty{
			Type: notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{
				{Text: &notionapi.Text{Content: truncateString(r.Title, 2000)}}, // Notion limit
			},
		},
		"URL": notionapi.URLProperty{
			Type: notionapi.PropertyTypeURL,
			URL:  r.Link,
		},
		"Source": notionapi.RichTextProperty{
			Type: notionapi.PropertyTypeRichText,
			RichText: []notionapi.RichText{
				{Text: &notionapi.Text{Content: truncateString(r.Source, 2000)}},
			},
		},
	}

	pageRequest := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: nc.dbID,
		},
		Properties: properties,
	}

	if _, err := nc.pages.Create(ctx, pageRequest); err != nil {
		return fmt.Errorf("failed to clip record: %w", err)
	}
	return nil
}

// ClipRecords clips every record, continuing past individual failures.
// It returns the number of records clipped.
func (nc *NotionClipper) ClipRecords(ctx context.Context, records []ResultRecord) int {
	clipped := 0
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			errorf("Notion clipping interrupted: %v", err)
			break
		}
		if err := nc.ClipRecord(ctx, r); err != nil {
			warnf("failed to clip %s: %v", r.Link, err)
			continue
		}
		clipped++
	}
	return clipped
}
