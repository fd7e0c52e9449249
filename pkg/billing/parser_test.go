package billing

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mjholt/invoice-analyzer/pkg/logger"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr bool
		check   func(t *testing.T, inv *Invoice)
	}{
		{
			name:    "valid recurring invoice with nested items",
			line:    `{"id":5501234,"createDate":"2022-06-01T04:10:00-06:00","typeCode":"RECURRING","invoiceTotalAmount":"1250.40","invoiceTotalRecurringAmount":"1180.00","invoiceTotalOneTimeAmount":"70.40","invoiceTopLevelItems":[{"id":9001,"billingItemId":77001,"categoryCode":"server","category":{"name":"Server","group":{"name":"Compute"}},"description":"Dual Xeon Server","hostName":"db01","domainName":"example.com","location":{"longName":"Dallas 10"},"product":{"description":"Dual Xeon Server","taxCategory":{"name":"IaaS"}},"hourlyFlag":false,"totalRecurringAmount":"500.00","totalOneTimeAmount":"0","hourlyRecurringFee":"0","children":[{"id":9002,"billingItemId":77002,"categoryCode":"os","category":{"name":"Operating System","group":{"name":"Compute"}},"description":"Windows Server Standard","recurringFee":"35.00","hourlyRecurringFee":"0","product":{"description":"Windows Server Standard","attributes":[{"attributeType":{"keyName":"BLUEMIX_PART_NUMBER"},"value":"D1VCRLL"}]}}]}]}`,
			wantErr: false,
			check: func(t *testing.T, inv *Invoice) {
				if inv.ID != 5501234 {
					t.Errorf("ID = %d, want 5501234", inv.ID)
				}
				if inv.TypeCode != TypeRecurring {
					t.Errorf("TypeCode = %s, want RECURRING", inv.TypeCode)
				}
				if !inv.InvoiceTotalAmount.Equal(decimal.RequireFromString("1250.40")) {
					t.Errorf("InvoiceTotalAmount = %s, want 1250.40", inv.InvoiceTotalAmount)
				}
				if len(inv.Items) != 1 {
					t.Fatalf("len(Items) = %d, want 1", len(inv.Items))
				}
				item := inv.Items[0]
				if item.FullHostName() != "db01.example.com" {
					t.Errorf("FullHostName = %s, want db01.example.com", item.FullHostName())
				}
				if len(item.Children) != 1 {
					t.Fatalf("len(Children) = %d, want 1", len(item.Children))
				}
				if got := item.Children[0].Attribute(AttrPartNumber); got != "D1VCRLL" {
					t.Errorf("Attribute(part number) = %s, want D1VCRLL", got)
				}
				if got := item.Children[0].Attribute(AttrServicePlanDivision); got != "" {
					t.Errorf("Attribute(division) = %q, want empty", got)
				}
			},
		},
		{
			name:    "valid credit invoice without items",
			line:    `{"id":5501300,"createDate":"2022-06-03T09:00:00-06:00","typeCode":"CREDIT","invoiceTotalAmount":"-42.00","invoiceTotalRecurringAmount":"0","invoiceTopLevelItems":[]}`,
			wantErr: false,
			check: func(t *testing.T, inv *Invoice) {
				if !inv.InvoiceTotalAmount.IsNegative() {
					t.Errorf("InvoiceTotalAmount = %s, want negative", inv.InvoiceTotalAmount)
				}
			},
		},
		{
			name:    "empty line",
			line:    "",
			wantErr: true,
		},
		{
			name:    "invalid json",
			line:    `{"invalid json`,
			wantErr: true,
		},
		{
			name:    "missing create date",
			line:    `{"id":5501234,"typeCode":"RECURRING","invoiceTotalAmount":"10.00","invoiceTotalRecurringAmount":"10.00"}`,
			wantErr: true,
		},
		{
			name:    "missing id",
			line:    `{"createDate":"2022-06-01T04:10:00-06:00","typeCode":"RECURRING","invoiceTotalAmount":"10.00","invoiceTotalRecurringAmount":"10.00"}`,
			wantErr: true,
		},
		{
			name:    "unknown type code",
			line:    `{"id":5501234,"createDate":"2022-06-01T04:10:00-06:00","typeCode":"ADJUSTMENT","invoiceTotalAmount":"10.00","invoiceTotalRecurringAmount":"10.00"}`,
			wantErr: true,
		},
	}

	p := New(logger.Noop())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := p.ParseLine(tt.line)

			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseLine() error = nil, wantErr = true")
				}
				return
			}

			if err != nil {
				t.Errorf("ParseLine() error = %v, wantErr = false", err)
				return
			}

			if inv == nil {
				t.Error("ParseLine() returned nil invoice")
				return
			}

			if tt.check != nil {
				tt.check(t, inv)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name       string
		content    string
		offset     int64
		wantCount  int
		wantErr    bool
		checkCount bool
	}{
		{
			name: "valid file with multiple invoices",
			content: `{"id":1,"createDate":"2022-06-01T04:10:00-06:00","typeCode":"RECURRING","invoiceTotalAmount":"100.00","invoiceTotalRecurringAmount":"100.00"}
{"id":2,"createDate":"2022-06-05T04:10:00-06:00","typeCode":"NEW","invoiceTotalAmount":"50.00","invoiceTotalRecurringAmount":"50.00"}
{"id":3,"createDate":"2022-06-09T04:10:00-06:00","typeCode":"ONE-TIME-CHARGE","invoiceTotalAmount":"12.50","invoiceTotalRecurringAmount":"0"}`,
			offset:     0,
			wantCount:  3,
			checkCount: true,
		},
		{
			name: "file with malformed line (should skip)",
			content: `{"id":1,"createDate":"2022-06-01T04:10:00-06:00","typeCode":"RECURRING","invoiceTotalAmount":"100.00","invoiceTotalRecurringAmount":"100.00"}
{"invalid json line
{"id":3,"createDate":"2022-06-09T04:10:00-06:00","typeCode":"RECURRING","invoiceTotalAmount":"75.00","invoiceTotalRecurringAmount":"75.00"}`,
			offset:     0,
			wantCount:  2,
			checkCount: true,
		},
		{
			name: "zero-amount invoice is skipped",
			content: `{"id":1,"createDate":"2022-06-01T04:10:00-06:00","typeCode":"RECURRING","invoiceTotalAmount":"0","invoiceTotalRecurringAmount":"0"}
{"id":2,"createDate":"2022-06-05T04:10:00-06:00","typeCode":"RECURRING","invoiceTotalAmount":"80.00","invoiceTotalRecurringAmount":"80.00"}`,
			offset:     0,
			wantCount:  1,
			checkCount: true,
		},
		{
			name:       "empty file",
			content:    "",
			offset:     0,
			wantCount:  0,
			checkCount: true,
		},
		{
			name:    "non-existent file",
			content: "", // Will not create file
			offset:  0,
			wantErr: true,
		},
	}

	p := New(logger.Noop())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var filePath string

			if tt.name != "non-existent file" {
				filePath = filepath.Join(tmpDir, tt.name+".jsonl")
				if err := os.WriteFile(filePath, []byte(tt.content), 0600); err != nil {
					t.Fatalf("Failed to create test file: %v", err)
				}
			} else {
				filePath = filepath.Join(tmpDir, "nonexistent.jsonl")
			}

			invoices, newOffset, err := p.ParseFile(filePath, tt.offset)

			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseFile() error = nil, wantErr = true")
				}
				return
			}

			if err != nil {
				t.Errorf("ParseFile() error = %v, wantErr = false", err)
				return
			}

			if tt.checkCount && len(invoices) != tt.wantCount {
				t.Errorf("ParseFile() got %d invoices, want %d", len(invoices), tt.wantCount)
			}

			if newOffset <= tt.offset && len(tt.content) > 0 {
				t.Errorf("ParseFile() newOffset = %d, should be > %d", newOffset, tt.offset)
			}
		})
	}
}

func TestInvoiceValidate(t *testing.T) {
	validTime := time.Now()

	tests := []struct {
		name    string
		invoice Invoice
		wantErr error
	}{
		{
			name: "valid invoice",
			invoice: Invoice{
				ID:         1,
				CreateDate: validTime,
				TypeCode:   TypeRecurring,
			},
		},
		{
			name: "zero id",
			invoice: Invoice{
				CreateDate: validTime,
				TypeCode:   TypeRecurring,
			},
			wantErr: ErrInvalidInvoiceID,
		},
		{
			name: "zero create date",
			invoice: Invoice{
				ID:       1,
				TypeCode: TypeRecurring,
			},
			wantErr: ErrInvalidCreateDate,
		},
		{
			name: "empty type code",
			invoice: Invoice{
				ID:         1,
				CreateDate: validTime,
			},
			wantErr: ErrInvalidTypeCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.invoice.Validate()
			if err != tt.wantErr {
				t.Errorf("Invoice.Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFullHostName(t *testing.T) {
	tests := []struct {
		name string
		item LineItem
		want string
	}{
		{
			name: "host and domain",
			item: LineItem{HostName: "web01", DomainName: "example.com"},
			want: "web01.example.com",
		},
		{
			name: "host only",
			item: LineItem{HostName: "web01"},
			want: "web01",
		},
		{
			name: "no host",
			item: LineItem{DomainName: "example.com"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.FullHostName(); got != tt.want {
				t.Errorf("FullHostName() = %q, want %q", got, tt.want)
			}
		})
	}
}
