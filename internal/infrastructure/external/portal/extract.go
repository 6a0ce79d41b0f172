package portal

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/uit-hub/academic-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PAGES
// ══════════════════════════════════════════════════════════════════════════════

// TranscriptPage is the extracted transcript page.
type TranscriptPage struct {
	// Rows holds every table row in document order as trimmed <td> texts.
	// Header rows made only of <th> cells come out empty.
	Rows [][]string

	// StudentNumber is the first <strong> text, the MSSV printed in the header.
	StudentNumber string

	// Personal is read from the first table on the page.
	Personal PersonalInfo
}

// PersonalInfo is the header block of the transcript page.
type PersonalInfo struct {
	FullName       string
	BirthDate      string
	Gender         string
	Class          string
	Faculty        string
	TrainingSystem string
}

// RegistrationPage is the extracted registration page.
type RegistrationPage struct {
	// Title is the text of the registration title block.
	Title string

	// Rows are the rows of the first table, header row included.
	Rows [][]string
}

// ══════════════════════════════════════════════════════════════════════════════
// EXTRACTION
// ══════════════════════════════════════════════════════════════════════════════

const (
	registrationTitleSelector = "div.title_thongtindangky"
	profileTableSelector      = "table.mytable"
	majorRowLabel             = "Ngành học"
)

func parse(body string) (*goquery.Document, error) {
	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, shared.WrapError("portal", "Parse", shared.ErrParse, "parse html", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// rowsOf returns the <td> texts of every <tr> in sel.
func rowsOf(sel *goquery.Selection) [][]string {
	var rows [][]string
	sel.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		rows = append(rows, cellsOf(tr))
	})
	return rows
}

func cellsOf(tr *goquery.Selection) []string {
	cells := []string{}
	tr.ChildrenFiltered("td").Each(func(_ int, td *goquery.Selection) {
		cells = append(cells, strings.TrimSpace(td.Text()))
	})
	return cells
}

// TableRows returns every row of every table in the document.
func TableRows(body string) ([][]string, error) {
	doc, err := parse(body)
	if err != nil {
		return nil, err
	}
	return rowsOf(doc.Selection), nil
}

// ExtractTranscript extracts the transcript rows and the student header.
func ExtractTranscript(body string) (*TranscriptPage, error) {
	doc, err := parse(body)
	if err != nil {
		return nil, err
	}

	page := &TranscriptPage{
		Rows:          rowsOf(doc.Selection),
		StudentNumber: strings.TrimSpace(doc.Find("strong").First().Text()),
	}

	header := rowsOf(doc.Find("table").First())
	page.Personal = PersonalInfo{
		FullName:       at(header, 0, 1),
		BirthDate:      at(header, 0, 3),
		Gender:         at(header, 0, 5),
		Class:          at(header, 1, 3),
		Faculty:        at(header, 1, 5),
		TrainingSystem: at(header, 2, 3),
	}
	return page, nil
}

// ExtractRegistration extracts the registration title and table.
func ExtractRegistration(body string) (*RegistrationPage, error) {
	doc, err := parse(body)
	if err != nil {
		return nil, err
	}

	return &RegistrationPage{
		Title: strings.TrimSpace(doc.Find(registrationTitleSelector).First().Text()),
		Rows:  rowsOf(doc.Find("table").First()),
	}, nil
}

// ExtractMajor returns the major from the profile table. The portal prints
// "<major> - <specialization>"; only the part before " - " is kept.
func ExtractMajor(body string) (string, error) {
	doc, err := parse(body)
	if err != nil {
		return "", err
	}

	var major string
	doc.Find(profileTableSelector).First().Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		cells := cellsOf(tr)
		if len(cells) < 2 || !strings.Contains(cells[0], majorRowLabel) {
			return true
		}
		major, _, _ = strings.Cut(cells[1], " - ")
		major = strings.TrimSpace(major)
		return false
	})
	return major, nil
}

func at(rows [][]string, row, col int) string {
	if row >= len(rows) || col >= len(rows[row]) {
		return ""
	}
	return rows[row][col]
}
