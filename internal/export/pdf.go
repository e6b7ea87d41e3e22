/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"goscreenwriter/internal/screenplay"
	"goscreenwriter/internal/storage"
	"goscreenwriter/internal/version"
)

// PDFOptions controls PDF export behavior.
// Units are points (pt). Courier is a core PDF font, so nothing is embedded.
//
// The layout follows the common screenplay page: 1.5in left margin, 1in elsewhere, and fixed
// indents per element kind. It does not try to match industry pagination rules
// (no MORE/CONT'D, no widow control).
type PDFOptions struct {
	PaperSize    string  // "letter" (default) or "a4"
	FontSize     float64 // default 12
	NumberScenes bool    // print scene numbers in the left margin
}

const (
	inch         = 72.0
	marginLeft   = 1.5 * inch
	marginRight  = 1.0 * inch
	marginTop    = 1.0 * inch
	marginBottom = 1.0 * inch
)

// column is the horizontal band an element kind is set in, relative to the left margin.
type column struct {
	offset, width float64
	align         string
	upper         bool
}

func columnFor(k screenplay.Kind, textWidth float64) column {
	switch k {
	case screenplay.KindSceneHeading:
		return column{0, textWidth, "L", true}
	case screenplay.KindCharacter:
		return column{2.2 * inch, textWidth - 2.2*inch, "L", true}
	case screenplay.KindDialogue:
		return column{1.0 * inch, 3.5 * inch, "L", false}
	case screenplay.KindParenthetical:
		return column{1.6 * inch, 2.0 * inch, "L", false}
	case screenplay.KindTransition:
		return column{0, textWidth, "R", true}
	default:
		return column{0, textWidth, "L", false}
	}
}

func pdfBytes(in interpreted, d storage.Draft, opt PDFOptions) ([]byte, error) {
	size := gofpdf.SizeType{Wd: 8.5 * inch, Ht: 11 * inch}
	if strings.EqualFold(opt.PaperSize, "a4") {
		size = gofpdf.SizeType{Wd: 595.28, Ht: 841.89}
	}
	fontSize := opt.FontSize
	if fontSize <= 0 {
		fontSize = 12
	}
	lineH := fontSize

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           size,
		OrientationStr: "P",
	})
	pdf.SetTitle(displayTitle(d.Title), true)
	pdf.SetCreator("Go Screenwriter "+version.Version, true)
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetFont("Courier", "", fontSize)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	textWidth := size.Wd - marginLeft - marginRight
	doc := in.doc

	bodyStart := 1
	if len(doc.TitlePage) > 0 {
		writeTitlePage(pdf, doc.TitlePage, textWidth, lineH, tr)
		bodyStart = 2
	}
	// Body pages carry "N." in the top right corner from the second body page on.
	pdf.SetHeaderFunc(func() {
		n := pdf.PageNo() - bodyStart + 1
		if n < 2 {
			return
		}
		pdf.SetXY(marginLeft, 0.5*inch)
		pdf.CellFormat(textWidth, lineH, fmt.Sprintf("%d.", n), "", 0, "R", false, 0, "")
		pdf.SetXY(marginLeft, marginTop)
	})
	pdf.AddPage()

	scene := 0
	for _, el := range doc.Elements {
		if el.Kind == screenplay.KindEmpty {
			pdf.Ln(lineH)
			continue
		}
		col := columnFor(el.Kind, textWidth)
		txt := el.Display
		if txt == "" {
			txt = el.Text
		}
		if col.upper {
			txt = strings.ToUpper(txt)
		}
		align := col.align
		if el.Centered {
			align = "C"
		}
		if el.Kind == screenplay.KindSceneHeading {
			scene++
			if opt.NumberScenes {
				y := pdf.GetY()
				pdf.SetX(marginLeft - 0.75*inch)
				pdf.CellFormat(0.6*inch, lineH, fmt.Sprintf("%d", scene), "", 0, "L", false, 0, "")
				pdf.SetY(y)
			}
		}
		pdf.SetX(marginLeft + col.offset)
		pdf.MultiCell(col.width, lineH, tr(txt), "", align, false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// writeTitlePage centers the title a third of the way down and lists the remaining fields below it.
func writeTitlePage(pdf *gofpdf.Fpdf, fields []screenplay.TitleField, textWidth, lineH float64, tr func(string) string) {
	pdf.AddPage()
	pdf.SetY(3.5 * inch)
	var rest []screenplay.TitleField
	for _, f := range fields {
		if strings.EqualFold(f.Key, "title") {
			pdf.SetX(marginLeft)
			pdf.MultiCell(textWidth, lineH, tr(strings.ToUpper(f.Value)), "", "C", false)
			pdf.Ln(lineH)
			continue
		}
		rest = append(rest, f)
	}
	for _, f := range rest {
		pdf.SetX(marginLeft)
		pdf.MultiCell(textWidth, lineH, tr(f.Value), "", "C", false)
		pdf.Ln(lineH)
	}
}
