package excel

import (
	"fmt"
	"time"

	"github.com/openauthstack/user-auth-service/internal/database/repository"

	"github.com/xuri/excelize/v2"
)

// Service builds xlsx exports of the user table for the admin surface
type Service struct {
	users repository.UserStore
}

func NewService(users repository.UserStore) *Service {
	return &Service{users: users}
}

const exportPageSize = 100

// ExportUsers renders every user account into an in-memory workbook and
// returns the file contents plus a timestamped filename. Password hashes are
// never part of the export.
func (s *Service) ExportUsers() ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Users"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"ID", "Email", "Username", "Active", "Verified", "Admin", "Created At"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, "", fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, "", fmt.Errorf("failed to write header: %w", err)
		}
	}

	row := 2
	for page := 1; ; page++ {
		users, total, err := s.users.List(page, exportPageSize, "")
		if err != nil {
			return nil, "", fmt.Errorf("failed to list users: %w", err)
		}
		for _, user := range users {
			values := []interface{}{
				user.ID,
				user.Email,
				user.Username,
				user.IsActive,
				user.IsVerified,
				user.IsAdmin,
				user.CreatedAt.Format(time.RFC3339),
			}
			for col, value := range values {
				cell, err := excelize.CoordinatesToCellName(col+1, row)
				if err != nil {
					return nil, "", fmt.Errorf("failed to build cell: %w", err)
				}
				if err := f.SetCellValue(sheet, cell, value); err != nil {
					return nil, "", fmt.Errorf("failed to write row: %w", err)
				}
			}
			row++
		}
		if int64(page*exportPageSize) >= total || len(users) == 0 {
			break
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to serialize workbook: %w", err)
	}

	filename := fmt.Sprintf("users_%d.xlsx", time.Now().Unix())
	return buf.Bytes(), filename, nil
}
