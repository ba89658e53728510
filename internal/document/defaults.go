package document

import "github.com/inkform/docpress/internal/geom"

// defaultLogoPNG is a tiny embedded placeholder so the default template's
// logo element renders without any network fetch.
const defaultLogoPNG = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

// BindingOption pairs a human-readable label with a binding path for the
// editor's data-source dropdown.
type BindingOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// CommonBindings is the fixed catalog of binding paths offered by the
// editor. Custom dotted paths remain allowed via free-text entry.
var CommonBindings = []BindingOption{
	{Label: "Vendor Name", Value: "metadata.vendorName"},
	{Label: "Vendor Address", Value: "metadata.vendorAddress"},
	{Label: "Vendor Phone", Value: "metadata.vendorPhone"},
	{Label: "Vendor Email", Value: "metadata.vendorEmail"},
	{Label: "Client Name", Value: "metadata.clientName"},
	{Label: "Client Address", Value: "metadata.clientAddress"},
	{Label: "Client Reference", Value: "metadata.clientRef"},
	{Label: "Invoice Number", Value: "metadata.invoiceNumber"},
	{Label: "Date", Value: "metadata.date"},
	{Label: "Document Title", Value: "metadata.documentTitle"},
	{Label: "Our Reference", Value: "metadata.ourReference"},
	{Label: "Work Order", Value: "metadata.workOrder"},
	{Label: "Contract No", Value: "metadata.contractNo"},
	{Label: "Project Name", Value: "metadata.projectName"},
	{Label: "Scope of Work", Value: "metadata.scopeOfWork"},
	{Label: "Department", Value: "metadata.department"},
	{Label: "Currency", Value: "currency"},
	{Label: "Payment Terms", Value: "metadata.paymentTerms"},
	{Label: "Grand Total", Value: "grandTotal"},
	{Label: "Total In Words", Value: "amountInWords"},
	{Label: "Bank Details Block", Value: "bankDetails.summary"},
}

// DefaultLayout is the section ordering hint carried by new templates.
var DefaultLayout = []string{"header", "vendor", "client", "lines", "bank", "footer"}

// DefaultTemplate returns the built-in invoice template used when no saved
// template is available. The editor falls back to it so a session never
// starts with zero elements.
func DefaultTemplate() *Template {
	return &Template{
		Name:     "Standard Invoice",
		Layout:   append([]string(nil), DefaultLayout...),
		Elements: defaultElements(),
		Metadata: Metadata{
			DocumentTitle: "Invoice:",
			VendorName:    "VELOSI CERTIFICATION L.L.C.",
			VendorAddress: "Ahmad Bin Ali Business Cntr, 1st F. New Salata, C-Ring Road,\nP.O. Box: 3408, Doha, Qatar",
			VendorPhone:   "(+) 44352850",
			VendorFax:     "(+) 44352819",
			VendorEmail:   "velosi@qatar.net.qa",
			PaymentTerms:  "Payment terms: 60 days upon submission of Invoice",
		},
		BankDetails: BankDetails{
			AccountName: "VELOSI CERTIFICATION LLC",
			BankName:    "BNP PARIBAS",
			Branch:      "Al Fardan Office Tower, P.O. Box 2636",
			AccountNo:   "06691 093293 001 60",
			SwiftCode:   "BNPAQAQA",
			IbanQar:     "QA06BNPA000669109329300160QAR",
			IbanUsd:     "QA88BNPA000669109329300160USD",
			Currency:    "Qatar Riyal/US Dollar",
		},
	}
}

func defaultElements() []Element {
	bold := &Style{FontSize: 9, FontWeight: "bold"}
	value := &Style{FontSize: 9}
	return []Element{
		{ID: "el_logo_img", Type: ElementImage, Label: "Logo", X: 630, Y: 30, Width: 120, Height: 60, Content: defaultLogoPNG, Style: &Style{Align: "right"}},
		{ID: "el_vendor_info", Type: ElementText, Label: "Vendor Details", X: 40, Y: 30, Width: 500, Height: 70, Binding: "metadata.vendorAddress", Style: &Style{FontSize: 9}},
		{ID: "el_vendor_name", Type: ElementText, Label: "Vendor Name", X: 40, Y: 15, Width: 500, Height: 15, Binding: "metadata.vendorName", Style: &Style{FontSize: 10, FontWeight: "bold"}},
		{ID: "el_doc_title", Type: ElementText, Label: "Document Title", X: 0, Y: 110, Width: geom.PageWidth, Height: 30, Binding: "metadata.documentTitle", Style: &Style{FontSize: 16, FontWeight: "bold", Align: "center"}},

		{ID: "el_client_box", Type: ElementBox, Label: "Client Box", X: 40, Y: 140, Width: 340, Height: 160, Style: &Style{BackgroundColor: "#e5e5e5"}},
		{ID: "el_client_name", Type: ElementText, Label: "Client Name", X: 50, Y: 150, Width: 320, Height: 20, Binding: "metadata.clientName", Style: &Style{FontSize: 10, FontWeight: "bold"}},
		{ID: "el_client_content", Type: ElementText, Label: "Client Details", X: 50, Y: 170, Width: 320, Height: 120, Binding: "metadata.clientAddress", Style: &Style{FontSize: 10}},

		{ID: "el_meta_box", Type: ElementBox, Label: "Metadata Box", X: 400, Y: 140, Width: 354, Height: 160, Style: &Style{BackgroundColor: "#e5e5e5"}},
		{ID: "lbl_doc", Type: ElementText, Label: "Lbl Doc", X: 410, Y: 150, Width: 100, Height: 15, Content: "Document no:", Style: bold},
		{ID: "lbl_date", Type: ElementText, Label: "Lbl Date", X: 410, Y: 165, Width: 100, Height: 15, Content: "Date:", Style: bold},
		{ID: "lbl_ref", Type: ElementText, Label: "Lbl Ref", X: 410, Y: 180, Width: 100, Height: 15, Content: "Our Reference:", Style: bold},
		{ID: "lbl_wo", Type: ElementText, Label: "Lbl WO", X: 410, Y: 195, Width: 100, Height: 15, Content: "Work order:", Style: bold},
		{ID: "lbl_cont", Type: ElementText, Label: "Lbl Contract", X: 410, Y: 210, Width: 100, Height: 15, Content: "Contract No:", Style: bold},
		{ID: "lbl_proj", Type: ElementText, Label: "Lbl Proj", X: 410, Y: 225, Width: 100, Height: 15, Content: "Project name:", Style: bold},
		{ID: "lbl_curr", Type: ElementText, Label: "Lbl Curr", X: 410, Y: 240, Width: 100, Height: 15, Content: "Currency:", Style: bold},
		{ID: "val_doc", Type: ElementText, Label: "Val Doc", X: 520, Y: 150, Width: 200, Height: 15, Binding: "metadata.invoiceNumber", Style: value},
		{ID: "val_date", Type: ElementText, Label: "Val Date", X: 520, Y: 165, Width: 200, Height: 15, Binding: "metadata.date", Style: value},
		{ID: "val_ref", Type: ElementText, Label: "Val Ref", X: 520, Y: 180, Width: 200, Height: 15, Binding: "metadata.ourReference", Style: value},
		{ID: "val_wo", Type: ElementText, Label: "Val WO", X: 520, Y: 195, Width: 200, Height: 15, Binding: "metadata.workOrder", Style: value},
		{ID: "val_cont", Type: ElementText, Label: "Val Contract", X: 520, Y: 210, Width: 200, Height: 15, Binding: "metadata.contractNo", Style: value},
		{ID: "val_proj", Type: ElementText, Label: "Val Proj", X: 520, Y: 225, Width: 200, Height: 15, Binding: "metadata.projectName", Style: value},
		{ID: "val_curr", Type: ElementText, Label: "Val Curr", X: 520, Y: 240, Width: 200, Height: 15, Binding: "currency", Style: value},

		{ID: "el_table", Type: ElementTable, Label: "Line Items", X: 40, Y: 320, Width: 714, Height: 350, Style: &Style{FontSize: 10}},

		{ID: "el_words_box", Type: ElementBox, Label: "Words Box", X: 40, Y: 680, Width: 714, Height: 30, Style: &Style{BackgroundColor: "#f0f0f0"}},
		{ID: "el_words", Type: ElementText, Label: "Amount in Words", X: 50, Y: 685, Width: 700, Height: 20, Binding: "amountInWords", Style: &Style{FontSize: 10, FontWeight: "bold"}},

		{ID: "el_payment_terms", Type: ElementText, Label: "Payment Terms", X: 40, Y: 725, Width: 714, Height: 20, Binding: "metadata.paymentTerms", Style: &Style{FontSize: 10}},
		{ID: "el_bank_block", Type: ElementText, Label: "Bank Details", X: 40, Y: 750, Width: 714, Height: 150, Binding: "bankDetails.summary", Style: &Style{FontSize: 9}},

		{ID: "el_sig_line", Type: ElementText, Label: "Signature Line", X: 550, Y: 1000, Width: 200, Height: 20, Content: "__________________________", Style: &Style{Align: "center"}},
		{ID: "el_sig_text", Type: ElementText, Label: "Signature Text", X: 550, Y: 1020, Width: 200, Height: 20, Content: "Authorized Signature", Style: &Style{FontSize: 10, Align: "center"}},
	}
}
