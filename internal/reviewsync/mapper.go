package reviewsync

import (
	"time"

	"github.com/jomei/notionapi"

	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/bigquery"
)

// UnknownCheckTitle is the page title used when the check number could not be
// read from the image. The Check ID property still identifies the row.
const UnknownCheckTitle = "(unknown)"

// CheckToNotionProperties converts a check row to Notion properties for the
// review database. The Check ID property is the idempotency key: syncs match
// on it, never on the page title.
func CheckToNotionProperties(row *bigquery.CheckRow) notionapi.Properties {
	title := row.CheckNumber
	if title == "" {
		title = UnknownCheckTitle
	}

	props := notionapi.Properties{
		"Check Number": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: title,
					},
				},
			},
		},
		"Check ID": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: row.CheckID,
					},
				},
			},
		},
		"Status": notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: "Needs Review",
			},
		},
	}

	// Batch
	if row.BatchID != "" {
		props["Batch"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: row.BatchID,
					},
				},
			},
		}
	}

	// Payee
	if row.PayeeName.Valid {
		props["Payee"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: row.PayeeName.StringVal,
					},
				},
			},
		}
	}

	// Confidence
	if row.Confidence.Valid {
		props["Confidence"] = notionapi.NumberProperty{
			Number: row.Confidence.Float64,
		}
	}

	// Amount
	if row.Amount.Valid {
		props["Amount"] = notionapi.NumberProperty{
			Number: row.Amount.Float64,
		}
	}

	// Check Date
	if row.CheckDate.Valid {
		props["Check Date"] = notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: func() *notionapi.Date {
					d := notionapi.Date(time.Date(
						row.CheckDate.Date.Year,
						time.Month(row.CheckDate.Date.Month),
						row.CheckDate.Date.Day,
						0, 0, 0, 0, time.UTC,
					))
					return &d
				}(),
			},
		}
	}

	// Source
	if row.Source != "" {
		props["Source"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: row.Source,
			},
		}
	}

	// Image
	if row.ImageURI.Valid {
		props["Image"] = notionapi.URLProperty{
			URL: row.ImageURI.StringVal,
		}
	}

	return props
}

// extractCheckID extracts the check ID from a Notion page's properties.
// Returns empty string if not found.
func extractCheckID(page notionapi.Page) string {
	if prop, ok := page.Properties["Check ID"]; ok {
		if richText, ok := prop.(*notionapi.RichTextProperty); ok {
			if len(richText.RichText) > 0 {
				return richText.RichText[0].PlainText
			}
		}
	}
	return ""
}
