package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"inventory/api/internal/models"
)

func strPtr(s string) *string { return &s }

func TestInventoryWorkbook(t *testing.T) {
	items := []models.Item{
		{ID: "1", Name: "Ball", Quantity: 4, Location: "Shelf A", CreatedAt: time.Now()},
		{
			ID: "2", Name: "Lego", Quantity: 1, Location: "Box 3",
			PhotoKey: strPtr("k.jpg"),
			PhotoURL: strPtr("http://blobs.test/item-photos/k.jpg?v=1"),
		},
	}

	data, err := Inventory(items)
	if err != nil {
		t.Fatalf("Inventory: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue(sheetName, "A2")
	if err != nil || got != "Ball" {
		t.Errorf("A2 = %q (%v), want Ball", got, err)
	}
	got, _ = f.GetCellValue(sheetName, "B2")
	if got != "4" {
		t.Errorf("B2 = %q, want 4", got)
	}
	got, _ = f.GetCellValue(sheetName, "D2")
	if got != "N/A" {
		t.Errorf("photoless item should read N/A, got %q", got)
	}

	got, _ = f.GetCellValue(sheetName, "D3")
	if got != "View Photo" {
		t.Errorf("photo cell = %q, want View Photo", got)
	}
	hasLink, link, err := f.GetCellHyperLink(sheetName, "D3")
	if err != nil || !hasLink || link != "http://blobs.test/item-photos/k.jpg?v=1" {
		t.Errorf("hyperlink = %v %q (%v)", hasLink, link, err)
	}
}

func TestInventoryEmpty(t *testing.T) {
	data, err := Inventory(nil)
	if err != nil {
		t.Fatalf("Inventory: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	got, _ := f.GetCellValue(sheetName, "A1")
	if got != "Item" {
		t.Errorf("header A1 = %q, want Item", got)
	}
}
