// Package sheets exports tabular data to a newly created Google Sheets
// document using a service account.
package sheets

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Exporter 表格导出接口
type Exporter interface {
	// Export creates a spreadsheet, writes a header row followed by rows,
	// makes the document publicly writable and returns its edit URL.
	Export(ctx context.Context, title, sheetName string, header []string, rows [][]interface{}) (string, error)
}

// Client Google Sheets 导出客户端
type Client struct {
	sheets *sheets.Service
	drive  *drive.Service
	logger *logrus.Logger
}

// NewClient builds a Client from a base64-encoded service account key, the
// form the key is delivered in via configuration.
func NewClient(ctx context.Context, credentialsBase64 string, logger *logrus.Logger) (*Client, error) {
	if logger == nil {
		logger = logrus.New()
	}

	credentials, err := base64.StdEncoding.DecodeString(credentialsBase64)
	if err != nil {
		return nil, fmt.Errorf("decode service account key: %w", err)
	}

	sheetsService, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(credentials),
		option.WithScopes(sheets.SpreadsheetsScope, drive.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	driveService, err := drive.NewService(ctx,
		option.WithCredentialsJSON(credentials),
		option.WithScopes(drive.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	return &Client{sheets: sheetsService, drive: driveService, logger: logger}, nil
}

// Export creates the document, populates it, and opens it up for anyone with
// the link. Population and permission failures after creation leave the empty
// document behind; both are logged with the spreadsheet id so it can be
// cleaned up by hand.
func (c *Client) Export(ctx context.Context, title, sheetName string, header []string, rows [][]interface{}) (string, error) {
	createResp, err := c.sheets.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: sheetName}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create spreadsheet: %w", err)
	}
	spreadsheetID := createResp.SpreadsheetId

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	values := append([][]interface{}{headerRow}, rows...)

	_, err = c.sheets.Spreadsheets.Values.Update(spreadsheetID, sheetName+"!A1", &sheets.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		c.logger.Errorf("Spreadsheet %s created but population failed: %v", spreadsheetID, err)
		return "", fmt.Errorf("populate spreadsheet %s: %w", spreadsheetID, err)
	}

	_, err = c.drive.Permissions.Create(spreadsheetID, &drive.Permission{
		Role: "writer",
		Type: "anyone",
	}).Context(ctx).Do()
	if err != nil {
		c.logger.Errorf("Spreadsheet %s populated but sharing failed: %v", spreadsheetID, err)
		return "", fmt.Errorf("share spreadsheet %s: %w", spreadsheetID, err)
	}

	url := fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit", spreadsheetID)
	c.logger.Infof("Exported %d rows to %s", len(rows), url)
	return url, nil
}
