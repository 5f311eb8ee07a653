package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/fooddept/fdbms/internal/models"
	"github.com/fooddept/fdbms/internal/money"
)

// Backup workbook sheets.
const (
	SheetBills               = "Bills"
	SheetBillItems           = "Bill Items"
	SheetAttachments         = "Attachments"
	SheetCustomDeductions    = "Custom Deductions"
	SheetCertificationPoints = "Certification Points"
	SheetContracts           = "Contracts"
	SheetUsers               = "Users"
)

// ErrInvalidBackup is returned when a backup lacks bills or contracts.
var ErrInvalidBackup = errors.New("invalid backup: Bills and Contracts sheets must contain data")

// Dataset is the full set of records covered by a backup.
type Dataset struct {
	Bills     []models.TransportBill
	Contracts []models.Contract
	Users     []models.User
}

// RestoreResult is the outcome of restoring a backup. Bills.Skipped counts
// bill rows without an id or number; Discarded counts bills dropped
// because their net amount was not finite.
type RestoreResult struct {
	Bills     Result[models.TransportBill] `json:"bills"`
	Discarded int                          `json:"discarded"`
	Contracts Result[models.Contract]      `json:"contracts"`
	Users     Result[models.User]          `json:"users"`
}

// Restore applies a backup workbook to the current records. Contracts are
// replaced with their ids intact, which needs the confirmation phrase; users are merged on
// username when the sheet has rows; bills are merged on bill number. On
// error nothing is restored.
func Restore(current Dataset, book Workbook, confirmation string) (RestoreResult, error) {
	billRows := book.Sheet(SheetBills)
	contractRows := book.Sheet(SheetContracts)
	if len(billRows) == 0 || len(contractRows) == 0 {
		return RestoreResult{}, ErrInvalidBackup
	}

	contracts, err := restoreContracts(current.Contracts, contractRows, confirmation)
	if err != nil {
		return RestoreResult{}, err
	}

	res := RestoreResult{Contracts: contracts}
	if rows := book.Sheet(SheetUsers); len(rows) > 0 {
		res.Users = Merge(Users, current.Users, rows)
	} else {
		res.Users = Result[models.User]{Records: current.Users}
	}

	restored, skipped, discarded := ReconstructBills(book)
	res.Bills = MergeBills(current.Bills, restored)
	res.Bills.Skipped = skipped
	res.Discarded = discarded
	return res, nil
}

// restoreContracts replaces every contract with the backup's. Contracts
// keep their contract_id so restored bills still point at them; rows
// without an id, or repeating one already taken, are numbered after the
// highest id.
func restoreContracts(existing []models.Contract, rows []Row, confirmation string) (Result[models.Contract], error) {
	if confirmation != ConfirmationPhrase {
		return Result[models.Contract]{}, &ConfirmationError{Kind: Contracts.Name, Existing: len(existing), Incoming: len(rows)}
	}

	res := Result[models.Contract]{Records: make([]models.Contract, 0, len(rows)), Removed: len(existing)}
	taken := make(map[int64]bool, len(rows))
	var unnumbered []int
	for _, row := range rows {
		rec := Contracts.Schema.Resolve(row)
		if _, ok := Contracts.RecordKey(rec); !ok {
			res.Skipped++
			continue
		}
		c, ok := Contracts.Build(rec)
		if !ok {
			res.Skipped++
			continue
		}
		if id := optionalID(row.Get("contract_id")); id != nil && *id > 0 && !taken[*id] {
			c.ContractID = *id
			taken[*id] = true
		} else {
			unnumbered = append(unnumbered, len(res.Records))
		}
		res.Records = append(res.Records, c)
		res.Added++
	}

	assign := Contracts.IDs(res.Records)
	for _, i := range unnumbered {
		res.Records[i] = assign(res.Records[i])
	}
	return res, nil
}

// MergeBills upserts restored bills into existing by bill number. A
// restored bill replaces the stored one but keeps its id; new bills get a
// fresh id.
func MergeBills(existing, restored []models.TransportBill) Result[models.TransportBill] {
	merged := make([]models.TransportBill, len(existing), len(existing)+len(restored))
	copy(merged, existing)

	index := make(map[string]int, len(existing))
	for i, b := range merged {
		if _, dup := index[b.BillNumber]; !dup {
			index[b.BillNumber] = i
		}
	}

	res := Result[models.TransportBill]{}
	for _, b := range restored {
		if i, found := index[b.BillNumber]; found {
			b.ID = merged[i].ID
			merged[i] = b
			res.Updated++
			continue
		}
		b.ID = uuid.NewString()
		index[b.BillNumber] = len(merged)
		merged = append(merged, b)
		res.Added++
	}
	res.Records = merged
	return res
}

// ReconstructBills rebuilds transportation bills from the backup sheets,
// joining child rows on bill_id. Rows without an id or bill number are
// skipped; bills whose netAmount does not coerce to a finite number are
// discarded. Text that is not numeric coerces to 0.
func ReconstructBills(book Workbook) (bills []models.TransportBill, skipped, discarded int) {
	items := groupByBill(book.Sheet(SheetBillItems))
	attachments := groupByBill(book.Sheet(SheetAttachments))
	custom := groupByBill(book.Sheet(SheetCustomDeductions))
	points := groupByBill(book.Sheet(SheetCertificationPoints))

	for _, row := range book.Sheet(SheetBills) {
		id := strings.TrimSpace(row.Get("id").String())
		number := strings.TrimSpace(row.Get("bill_number").String())
		if id == "" || number == "" {
			skipped++
			continue
		}

		if net := row.Get("netAmount").Float(); math.IsNaN(net) || math.IsInf(net, 0) {
			discarded++
			continue
		}

		b := billFromRow(row)
		b.ID = id
		b.BillNumber = number
		for _, r := range items[id] {
			b.Items = append(b.Items, itemFromRow(r))
		}
		for _, r := range attachments[id] {
			b.Attachments = append(b.Attachments, models.Attachment{
				ID:   r.Get("id").String(),
				Name: r.Get("name").String(),
				Type: r.Get("type").String(),
			})
		}
		for _, r := range custom[id] {
			b.CustomDeductions = append(b.CustomDeductions, models.CustomDeduction{
				ID:    r.Get("id").String(),
				Label: r.Get("label").String(),
				Value: r.Get("value").Float(),
			})
		}
		for _, r := range points[id] {
			b.CertificationPoints = append(b.CertificationPoints, models.CertificationPoint{
				ID:   r.Get("id").String(),
				Text: r.Get("text").String(),
			})
		}
		bills = append(bills, b)
	}
	return bills, skipped, discarded
}

func groupByBill(rows []Row) map[string][]Row {
	groups := make(map[string][]Row)
	for _, r := range rows {
		id := strings.TrimSpace(r.Get("bill_id").String())
		groups[id] = append(groups[id], r)
	}
	return groups
}

func billFromRow(row Row) models.TransportBill {
	b := models.TransportBill{
		BillDate:            row.Get("bill_date").String(),
		BillPeriod:          row.Get("bill_period").String(),
		SanctionedNo:        row.Get("sanctioned_no").String(),
		ContractID:          optionalID(row.Get("contract_id")),
		ContractorID:        int64(row.Get("contractor_id").Int()),
		ContractorName:      row.Get("contractor_name").String(),
		Items:               []models.BillItem{},
		DelayDays:           row.Get("delay_days").Int(),
		Deductions:          parseDeductions(row.Get("deductions")),
		CustomDeductions:    []models.CustomDeduction{},
		CertificationPoints: []models.CertificationPoint{},
		GrandTotal:          row.Get("grandTotal").Float(),
		TotalDeductions:     row.Get("totalDeductions").Float(),
		NetAmount:           row.Get("netAmount").Float(),
		AmountInWords:       row.Get("amountInWords").String(),
		Attachments:         []models.Attachment{},
	}

	status := models.Status(strings.TrimSpace(row.Get("status").String()))
	if !status.Valid() {
		status = models.StatusDraft
	}
	b.Lifecycle = models.Lifecycle{
		Status:      status,
		SentAt:      parseTime(row.Get("agOfficeSentAt")),
		ProcessedAt: parseTime(row.Get("agOfficeProcessedAt")),
	}
	return b
}

func itemFromRow(row Row) models.BillItem {
	item := models.BillItem{
		ID:         row.Get("id").String(),
		ContractID: optionalID(row.Get("contract_id")),
		From:       row.Get("from").String(),
		To:         row.Get("to").String(),
		Bags:       float64(row.Get("bags").Int()),
		Mode:       models.ModeNormal,
		BagTypes:   []string{},
		PPBags:     float64(row.Get("ppBags").Int()),
		JuteBags:   float64(row.Get("juteBags").Int()),
		RatePerKg:  row.Get("rate_per_kg").Float(),
		GrossKgs:   row.Get("grossKgs").Float(),
		BardanaKgs: row.Get("bardanaKgs").Float(),
		NetKgs:     row.Get("netKgs").Float(),
		Amount:     row.Get("rs").Float(),
	}
	if models.Mode(strings.TrimSpace(row.Get("mode").String())) == models.ModeBardana {
		item.Mode = models.ModeBardana
	}

	if types := row.Get("bagTypes"); !types.IsEmpty() {
		for _, t := range strings.Split(types.String(), ",") {
			if t = strings.TrimSpace(t); t != "" {
				item.BagTypes = append(item.BagTypes, t)
			}
		}
		return item
	}

	// Older backups recorded a single bag type for Bardana items.
	if item.Mode == models.ModeBardana {
		switch strings.TrimSpace(row.Get("bagType").String()) {
		case models.BagPP:
			item.BagTypes = []string{models.BagPP}
			item.PPBags = item.Bags
		case models.BagJute:
			item.BagTypes = []string{models.BagJute}
			item.JuteBags = item.Bags
		}
	}
	return item
}

func parseDeductions(c Cell) models.DeductionSet {
	var raw map[string]any
	if c.IsEmpty() || json.Unmarshal([]byte(c.String()), &raw) != nil {
		return models.DeductionSet{}
	}
	desc, _ := raw["others_description"].(string)
	return models.DeductionSet{
		Penalty:           money.Float(raw["penalty"]),
		IncomeTax:         money.Float(raw["income_tax"]),
		TajveedUlQuran:    money.Float(raw["tajveed_ul_quran"]),
		EducationCess:     money.Float(raw["education_cess"]),
		KLC:               money.Float(raw["klc"]),
		SDCurrent:         money.Float(raw["sd_current"]),
		GSTCurrent:        money.Float(raw["gst_current"]),
		Others:            money.Float(raw["others"]),
		OthersDescription: desc,
	}
}

func optionalID(c Cell) *int64 {
	f, ok := c.Strict()
	if !ok {
		return nil
	}
	id := int64(f)
	return &id
}

func parseTime(c Cell) *time.Time {
	if c.IsEmpty() {
		return nil
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(c.String()))
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

var (
	billHeader = []string{
		"id", "bill_number", "bill_date", "bill_period", "sanctioned_no", "contract_id",
		"contractor_id", "contractor_name", "delay_days", "deductions", "grandTotal",
		"totalDeductions", "netAmount", "amountInWords", "status", "agOfficeSentAt",
		"agOfficeProcessedAt",
	}
	itemHeader = []string{
		"bill_id", "id", "contract_id", "from", "to", "bags", "mode", "bagTypes", "ppBags",
		"juteBags", "rate_per_kg", "grossKgs", "bardanaKgs", "netKgs", "rs",
	}
	attachmentHeader = []string{"bill_id", "id", "name", "type"}
	customHeader     = []string{"bill_id", "id", "label", "value"}
	pointHeader      = []string{"bill_id", "id", "text"}
	contractHeader   = []string{
		"contract_id", "sanctioned_no", "contractor_id", "contractor_name", "from_location",
		"to_location", "rate_per_kg", "effective_date", "status",
	}
	userHeader = []string{"id", "username", "role"}
)

// WriteBackup writes the dataset as a backup workbook. Attachment data and
// password hashes are left out.
func WriteBackup(w io.Writer, data Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetBills); err != nil {
		return fmt.Errorf("failed to name bills sheet: %w", err)
	}

	var bills, items, attachments, custom, points [][]any
	for _, b := range data.Bills {
		deductions, err := json.Marshal(b.Deductions)
		if err != nil {
			return fmt.Errorf("failed to encode deductions of bill %s: %w", b.BillNumber, err)
		}
		bills = append(bills, []any{
			b.ID, b.BillNumber, b.BillDate, b.BillPeriod, b.SanctionedNo, idCell(b.ContractID),
			b.ContractorID, b.ContractorName, b.DelayDays, string(deductions), b.GrandTotal,
			b.TotalDeductions, b.NetAmount, b.AmountInWords, string(b.Current()),
			timeCell(b.SentAt), timeCell(b.ProcessedAt),
		})
		for _, i := range b.Items {
			items = append(items, []any{
				b.ID, i.ID, idCell(i.ContractID), i.From, i.To, i.Bags, string(i.Mode),
				strings.Join(i.BagTypes, ","), i.PPBags, i.JuteBags, i.RatePerKg, i.GrossKgs,
				i.BardanaKgs, i.NetKgs, i.Amount,
			})
		}
		for _, a := range b.Attachments {
			attachments = append(attachments, []any{b.ID, a.ID, a.Name, a.Type})
		}
		for _, d := range b.CustomDeductions {
			custom = append(custom, []any{b.ID, d.ID, d.Label, d.Value})
		}
		for _, p := range b.CertificationPoints {
			points = append(points, []any{b.ID, p.ID, p.Text})
		}
	}

	var contracts [][]any
	for _, c := range data.Contracts {
		contracts = append(contracts, []any{
			c.ContractID, c.SanctionedNo, c.ContractorID, c.ContractorName, c.FromLocation,
			c.ToLocation, c.RatePerKg, c.EffectiveDate, c.Status,
		})
	}
	var users [][]any
	for _, u := range data.Users {
		users = append(users, []any{u.ID, u.Username, string(u.Role)})
	}

	sheets := []struct {
		name   string
		header []string
		rows   [][]any
	}{
		{SheetBills, billHeader, bills},
		{SheetBillItems, itemHeader, items},
		{SheetAttachments, attachmentHeader, attachments},
		{SheetCustomDeductions, customHeader, custom},
		{SheetCertificationPoints, pointHeader, points},
		{SheetContracts, contractHeader, contracts},
		{SheetUsers, userHeader, users},
	}
	for _, s := range sheets {
		if err := WriteSheet(f, s.name, s.header, s.rows); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

func idCell(id *int64) any {
	if id == nil {
		return ""
	}
	return *id
}

func timeCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
