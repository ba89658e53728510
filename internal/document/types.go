// Package document defines the template and document-data model shared by
// the canvas editor and the PDF renderer: positioned elements with optional
// data bindings, the per-document record produced by extraction, and the
// derived-total rules that keep line items and grand totals consistent.
package document

// ElementType identifies the rendering and interaction contract of a
// template element. The set is closed; renderers reject anything else.
type ElementType string

const (
	ElementText  ElementType = "text"
	ElementImage ElementType = "image"
	ElementBox   ElementType = "box"
	ElementTable ElementType = "table"
)

// Valid reports whether t is one of the four supported element types.
func (t ElementType) Valid() bool {
	switch t {
	case ElementText, ElementImage, ElementBox, ElementTable:
		return true
	}
	return false
}

// Style holds the optional visual properties of an element. All fields are
// optional; renderers apply defaults (size 12, color black, align left,
// weight normal) when a field is absent.
type Style struct {
	FontSize        float64 `json:"fontSize,omitempty"`
	FontWeight      string  `json:"fontWeight,omitempty"`     // "normal" or "bold"
	FontStyle       string  `json:"fontStyle,omitempty"`      // "normal" or "italic"
	TextDecoration  string  `json:"textDecoration,omitempty"` // "none" or "underline"
	Align           string  `json:"align,omitempty"`          // "left", "center", "right"
	BackgroundColor string  `json:"backgroundColor,omitempty"`
	Color           string  `json:"color,omitempty"`
}

// Element is the atomic visual unit of a template. Geometry is in page
// units (see the geom package). When Binding is set it takes precedence
// over Content.
type Element struct {
	ID      string      `json:"id"`
	Type    ElementType `json:"type"`
	Label   string      `json:"label,omitempty"`
	X       float64     `json:"x"`
	Y       float64     `json:"y"`
	Width   float64     `json:"width"`
	Height  float64     `json:"height"`
	Content string      `json:"content,omitempty"`
	Binding string      `json:"binding,omitempty"`
	Style   *Style      `json:"style,omitempty"`
}

// Metadata is the header information of a document: vendor and client
// identity, references and contract details. Template metadata acts as a
// set of defaults that extracted metadata overrides where present.
type Metadata struct {
	DocumentTitle string `json:"documentTitle,omitempty"`
	VendorName    string `json:"vendorName,omitempty"`
	VendorAddress string `json:"vendorAddress,omitempty"`
	VendorPhone   string `json:"vendorPhone,omitempty"`
	VendorFax     string `json:"vendorFax,omitempty"`
	VendorEmail   string `json:"vendorEmail,omitempty"`
	ClientName    string `json:"clientName,omitempty"`
	ClientAddress string `json:"clientAddress,omitempty"`
	InvoiceNumber string `json:"invoiceNumber,omitempty"`
	Date          string `json:"date,omitempty"`
	ClientRef     string `json:"clientRef,omitempty"`
	ContractNo    string `json:"contractNo,omitempty"`
	ProjectName   string `json:"projectName,omitempty"`
	ScopeOfWork   string `json:"scopeOfWork,omitempty"`
	PaymentTerms  string `json:"paymentTerms,omitempty"`
	WorkOrder     string `json:"workOrder,omitempty"`
	Department    string `json:"department,omitempty"`
	OurReference  string `json:"ourReference,omitempty"`
	Currency      string `json:"currency,omitempty"`
}

// BankDetails is the remittance block rendered by the bank-details
// composite binding.
type BankDetails struct {
	AccountName string `json:"accountName,omitempty"`
	BankName    string `json:"bankName,omitempty"`
	Branch      string `json:"branch,omitempty"`
	AccountNo   string `json:"accountNo,omitempty"`
	SwiftCode   string `json:"swiftCode,omitempty"`
	IbanQar     string `json:"ibanQar,omitempty"`
	IbanUsd     string `json:"ibanUsd,omitempty"`
	Currency    string `json:"currency,omitempty"`
}

// Line is a single billed line item. Total is always derived from
// Quantity and Rate; use the Record mutation helpers rather than writing
// Total directly.
type Line struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	Rate        float64 `json:"rate"`
	Total       float64 `json:"total"`
	LineText    string  `json:"lineText,omitempty"`
}

// Record is the per-document instance data: extracted fields merged with
// template defaults, then corrected by the user. GrandTotal is always the
// sum of line totals.
type Record struct {
	Metadata         Metadata    `json:"metadata"`
	Summary          []Line      `json:"summary"`
	GrandTotal       float64     `json:"grandTotal"`
	Currency         string      `json:"currency"`
	BankDetails      BankDetails `json:"bankDetails"`
	OriginalFileName string      `json:"originalFileName,omitempty"`
	Layout           []string    `json:"layout,omitempty"`
	Elements         []Element   `json:"elements,omitempty"`
}

// Template is a named, reusable layout of positioned elements plus default
// metadata and bank details. Layout is an ordering hint over logical
// sections, preserved for compatibility with stored templates.
type Template struct {
	ID          string      `json:"id,omitempty"`
	Name        string      `json:"name"`
	Metadata    Metadata    `json:"metadata"`
	BankDetails BankDetails `json:"bankDetails"`
	Layout      []string    `json:"layout,omitempty"`
	Elements    []Element   `json:"elements,omitempty"`
}

// DocumentKind tags what kind of scanned document a payload is, which
// steers extraction and merge behavior.
type DocumentKind string

const (
	KindInvoice   DocumentKind = "invoice"
	KindPO        DocumentKind = "po"
	KindTimesheet DocumentKind = "timesheet"
)
