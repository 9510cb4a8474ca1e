package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"calificaciones_app_go/logging"
	"calificaciones_app_go/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// XLSXContentType is the MIME type of statistics workbooks
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportURLExpiration bounds the lifetime of signed workbook links
const ExportURLExpiration = 15 * time.Minute

var statisticsHeader = []string{
	"Categoría", "Funcionario", "Desde", "Hasta",
	"Inventario inicial", "Ingreso efectivo", "Carga efectiva", "Egreso efectivo",
	"Conciliaciones", "Inventario final", "", "Restan",
}

var statisticsClasses = []models.CaseClass{models.ClassOral, models.ClassGuarantees, models.ClassWritten}

// headerRow is where the column titles go; data starts right below
const headerRow = 3

// BuildStatisticsWorkbook lays out the raw movement rows of an office, one
// sheet per class, grouped by category with a blank row after each group.
func BuildStatisticsWorkbook(office *models.Office, records []models.MovementRecord) (*excelize.File, error) {
	byClass := make(map[models.CaseClass][]models.MovementRecord)
	for _, r := range records {
		if r.Category == models.ConsolidatedCategory {
			continue
		}
		byClass[r.Class] = append(byClass[r.Class], r)
	}

	var classes []models.CaseClass
	for _, c := range statisticsClasses {
		if len(byClass[c]) > 0 {
			classes = append(classes, c)
		}
	}
	if len(classes) == 0 {
		classes = []models.CaseClass{models.ClassOral}
	}

	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("new style: %w", err)
	}

	for i, class := range classes {
		sheet := string(class)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("new sheet: %w", err)
		}

		if err := writeStatisticsSheet(f, sheet, office, byClass[class], bold); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func writeStatisticsSheet(f *excelize.File, sheet string, office *models.Office, rows []models.MovementRecord, bold int) error {
	set := func(col, row int, v interface{}) error {
		cell := fmt.Sprintf("%s%d", colName(col), row)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
		return nil
	}

	if err := set(1, 1, "Despacho"); err != nil {
		return err
	}
	if err := set(2, 1, fmt.Sprintf("%s - %s", office.Name, office.Code)); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", bold); err != nil {
		return fmt.Errorf("style office title: %w", err)
	}

	for col, h := range statisticsHeader {
		if err := set(col+1, headerRow, h); err != nil {
			return err
		}
	}
	end := fmt.Sprintf("%s%d", colName(len(statisticsHeader)), headerRow)
	if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", headerRow), end, bold); err != nil {
		return fmt.Errorf("style header row: %w", err)
	}

	row := headerRow + 1
	for _, group := range groupByCategory(rows) {
		for _, r := range group {
			official := r.OfficialID
			if r.Official != nil {
				official = fmt.Sprintf("%s - %s", r.Official.Name, r.Official.Document)
			}
			values := []interface{}{
				r.Category, official, r.From.Format(dateLayout), r.To.Format(dateLayout),
				r.InitialInventory, r.EffectiveIntake, r.EffectiveWorkload, r.EffectiveOutput,
				r.Settlements, r.FinalInventory, nil, r.Remaining,
			}
			for col, v := range values {
				if v == nil {
					continue
				}
				if err := set(col+1, row, v); err != nil {
					return err
				}
			}
			row++
		}
		row++
	}

	for c := 1; c <= len(statisticsHeader); c++ {
		width := 14.0
		if c == 1 || c == 2 {
			width = 36
		}
		_ = f.SetColWidth(sheet, colName(c), colName(c), width)
	}
	return nil
}

const dateLayout = "2006-01-02"

// groupByCategory orders rows by sub-period start, then groups them by
// category in order of first appearance
func groupByCategory(rows []models.MovementRecord) [][]models.MovementRecord {
	sorted := append([]models.MovementRecord(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].From.Before(sorted[j].From) })

	index := make(map[string]int)
	var groups [][]models.MovementRecord
	for _, r := range sorted {
		i, ok := index[r.Category]
		if !ok {
			i = len(groups)
			index[r.Category] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], r)
	}
	return groups
}

func colName(n int) string {
	// 1 -> A; 27 -> AA
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}

// StatisticsFileName names the workbook of an office and period
func StatisticsFileName(office *models.Office, period int) string {
	return fmt.Sprintf("estadisticas_%s_%d.xlsx", office.Code, period)
}

// WriteStatisticsWorkbook renders the workbook of an office score to w and
// returns its file name
func WriteStatisticsWorkbook(db *gorm.DB, officeScoreID string, w io.Writer) (string, error) {
	score, err := GetOfficeScore(db, officeScoreID)
	if err != nil {
		return "", err
	}
	if score.Office == nil || score.PeriodScore == nil {
		return "", notFound(gorm.ErrRecordNotFound, "office score")
	}

	records, err := ListMovementRecords(db, score.OfficeID, score.PeriodScore.Period)
	if err != nil {
		return "", err
	}

	f, err := BuildStatisticsWorkbook(score.Office, records)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return "", fmt.Errorf("failed to write workbook: %w", err)
	}
	return StatisticsFileName(score.Office, score.PeriodScore.Period), nil
}

// StoreStatisticsExport uploads the workbook of an office score, records the
// export and returns it with a signed download URL
func StoreStatisticsExport(ctx context.Context, db *gorm.DB, storage StorageProvider, actor AuditContext, officeScoreID string) (*models.StatisticsExport, string, error) {
	if storage == nil || !storage.IsConfigured() {
		return nil, "", fmt.Errorf("storage not configured")
	}

	var buf bytes.Buffer
	fileName, err := WriteStatisticsWorkbook(db, officeScoreID, &buf)
	if err != nil {
		return nil, "", err
	}

	var score models.OfficeScore
	if err := db.Preload("PeriodScore").First(&score, "id = ?", officeScoreID).Error; err != nil {
		return nil, "", notFound(err, "office score")
	}

	key := GenerateStatisticsExportKey(score.OfficeID, score.PeriodScore.Period, fileName)
	size := int64(buf.Len())
	if _, err := storage.UploadReader(ctx, &buf, key, XLSXContentType, size); err != nil {
		return nil, "", err
	}

	export := &models.StatisticsExport{
		OfficeScoreID: officeScoreID,
		CreatedByID:   ptrIfNotEmpty(actor.UserID),
		FileKey:       key,
		FileName:      fileName,
		SizeBytes:     size,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(export).Error; err != nil {
			return fmt.Errorf("failed to record export: %w", err)
		}
		return RecordAuditEvent(tx, actor, AuditEvent{
			Action:       models.AuditActionExport,
			ResourceType: "OfficeScore",
			ResourceID:   officeScoreID,
			ResourceName: fileName,
			Description:  "Statistics workbook exported",
		})
	})
	if err != nil {
		if delErr := storage.Delete(ctx, key); delErr != nil {
			logging.L().Warnw("failed to remove orphaned export", "key", key, "error", delErr)
		}
		return nil, "", err
	}

	url, err := storage.GetSignedURL(ctx, key, ExportURLExpiration)
	if err != nil {
		return nil, "", err
	}
	return export, url, nil
}

// OpenStatisticsExport returns the stored workbook of an export. The caller
// closes the reader.
func OpenStatisticsExport(ctx context.Context, db *gorm.DB, storage StorageProvider, exportID string) (*models.StatisticsExport, io.ReadCloser, string, error) {
	var export models.StatisticsExport
	if err := db.First(&export, "id = ?", exportID).Error; err != nil {
		return nil, nil, "", notFound(err, "statistics export")
	}
	if storage == nil || !storage.IsConfigured() {
		return nil, nil, "", fmt.Errorf("storage not configured")
	}

	reader, contentType, err := storage.Get(ctx, export.FileKey)
	if err != nil {
		return nil, nil, "", err
	}
	return &export, reader, contentType, nil
}
