package reader

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
)

// NCX XML structures for parsing toc.ncx
type ncx struct {
	NavMap navMap `xml:"navMap"`
}

type navMap struct {
	NavPoints []navPoint `xml:"navPoint"`
}

type navPoint struct {
	ID        string     `xml:"id,attr"`
	PlayOrder int        `xml:"playOrder,attr"`
	Label     navLabel   `xml:"navLabel"`
	Content   navContent `xml:"content"`
	Children  []navPoint `xml:"navPoint"`
}

type navLabel struct {
	Text string `xml:"text"`
}

type navContent struct {
	Src string `xml:"src,attr"`
}

// buildTOCHrefMap parses the NCX and returns a map of href to title. Spine
// items are looked up by full href, by href without fragment and by base name.
func buildTOCHrefMap(filename string, book *epub.Rootfile) map[string]string {
	data, err := readNCX(filename, book)
	if err != nil {
		return map[string]string{}
	}
	return parseNCXTitles(data)
}

func parseNCXTitles(ncxData []byte) map[string]string {
	result := make(map[string]string)

	var toc ncx
	if err := xml.Unmarshal(ncxData, &toc); err != nil {
		return result
	}

	add := func(key, title string) {
		if _, exists := result[key]; !exists {
			result[key] = title
		}
	}

	var extract func(points []navPoint)
	extract = func(points []navPoint) {
		for _, np := range points {
			href := np.Content.Src
			title := strings.TrimSpace(np.Label.Text)

			add(href, title)
			if idx := strings.Index(href, "#"); idx != -1 {
				add(href[:idx], title)
			}
			baseHref := path.Base(href)
			if idx := strings.Index(baseHref, "#"); idx != -1 {
				baseHref = baseHref[:idx]
			}
			add(baseHref, title)

			extract(np.Children)
		}
	}
	extract(toc.NavMap.NavPoints)

	return result
}

const ncxMediaType = "application/x-dtbncx+xml"

// readNCX returns the NCX document of the book at filename. The manifest
// entry wins; otherwise the first .ncx file in the archive is used.
func readNCX(filename string, book *epub.Rootfile) ([]byte, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("open epub archive: %w", err)
	}
	defer zr.Close()

	f := ncxFile(zr.File, book.Manifest.Items)
	if f == nil {
		return nil, errors.New("epub has no NCX")
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}

// ncxFile picks the archive entry holding the NCX, or nil.
func ncxFile(files []*zip.File, items []epub.Item) *zip.File {
	for _, item := range items {
		if item.MediaType != ncxMediaType {
			continue
		}
		for _, f := range files {
			if f.Name == item.HREF || path.Base(f.Name) == path.Base(item.HREF) {
				return f
			}
		}
	}
	for _, f := range files {
		if strings.EqualFold(path.Ext(f.Name), ".ncx") {
			return f
		}
	}
	return nil
}
