package extract

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
)

// ParseTable reads the rows of the first element matching container. Each
// <tr> becomes one row of its <td> texts. An empty container selects the
// whole document.
func ParseTable(r io.Reader, container string) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	root := doc.Selection
	if container != "" {
		root = doc.Find(container).First()
		if root.Length() == 0 {
			return nil, fmt.Errorf("container %q not found", container)
		}
	}

	var rows [][]string
	root.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		row := make([]string, 0, cells.Length())
		cells.Each(func(_ int, td *goquery.Selection) {
			row = append(row, td.Text())
		})
		rows = append(rows, row)
	})
	return rows, nil
}
