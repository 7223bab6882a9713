// Package excel renders a scheduling result as an Excel workbook and
// reads schedules back for auditing.
package excel

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/camdenleague/sked/internal/problem"
	"github.com/camdenleague/sked/internal/schedule"
)

const gamesSheet = "Games"

// Generate creates a workbook with the master schedule grid, a flat
// Games sheet (the round-trippable source of truth), per-team sheets,
// and an Unresolved sheet when the run was incomplete.
func Generate(m *problem.Model, result *schedule.Result, calendars map[string][]schedule.Slot) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetDefaultFont("Arial")

	if err := writeMasterSheet(f, m, result, calendars); err != nil {
		return nil, fmt.Errorf("writing master sheet: %w", err)
	}
	if err := writeGamesSheet(f, result); err != nil {
		return nil, fmt.Errorf("writing games sheet: %w", err)
	}
	if err := writeTeamSheets(f, m, result); err != nil {
		return nil, fmt.Errorf("writing team sheets: %w", err)
	}
	if len(result.Unresolved) > 0 || len(result.Shortfalls) > 0 {
		if err := writeUnresolvedSheet(f, result); err != nil {
			return nil, fmt.Errorf("writing unresolved sheet: %w", err)
		}
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

func writeMasterSheet(f *excelize.File, m *problem.Model, result *schedule.Result, calendars map[string][]schedule.Slot) error {
	sheet := "Master Schedule"
	f.NewSheet(sheet)

	var fieldNames []string
	for _, field := range m.Fields {
		fieldNames = append(fieldNames, field.ID)
	}

	headers := []string{"Date", "Day", "Time"}
	headers = append(headers, fieldNames...)
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, 1), h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 14, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if headerStyle != 0 {
		for i := range headers {
			f.SetCellStyle(sheet, cellRef(i+1, 1), cellRef(i+1, 1), headerStyle)
		}
	}

	type gridKey struct {
		start time.Time
		field string
	}
	gameCells := make(map[gridKey]string)
	for _, g := range result.Games {
		gameCells[gridKey{g.Slot.Start, g.Slot.FieldID}] = fmt.Sprintf("%s @ %s", g.Matchup.Away, g.Matchup.Home)
	}

	// Rows: every distinct start time the calendars can produce, so
	// open slots show up as blanks.
	seen := make(map[time.Time]bool)
	var starts []time.Time
	for _, slots := range calendars {
		for _, s := range slots {
			if !seen[s.Start] {
				seen[s.Start] = true
				starts = append(starts, s.Start)
			}
		}
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	for i, start := range starts {
		row := i + 2
		f.SetCellValue(sheet, cellRef(1, row), start.Format("01/02/2006"))
		f.SetCellValue(sheet, cellRef(2, row), start.Format("Mon"))
		f.SetCellValue(sheet, cellRef(3, row), start.Format("15:04"))
		for fi, fname := range fieldNames {
			if cell, ok := gameCells[gridKey{start, fname}]; ok {
				f.SetCellValue(sheet, cellRef(fi+4, row), cell)
			}
		}
	}

	f.SetColWidth(sheet, "A", "A", 14)
	f.SetColWidth(sheet, "B", "B", 8)
	f.SetColWidth(sheet, "C", "C", 8)
	for i := range fieldNames {
		col := colLetter(i + 4)
		f.SetColWidth(sheet, col, col, 26)
	}

	return nil
}

func writeGamesSheet(f *excelize.File, result *schedule.Result) error {
	f.NewSheet(gamesSheet)

	headers := []string{"Game", "League", "Date", "Day", "Time", "Field", "Home", "Away", "Umpires"}
	for i, h := range headers {
		f.SetCellValue(gamesSheet, cellRef(i+1, 1), h)
	}

	for i, g := range result.Games {
		row := i + 2
		f.SetCellValue(gamesSheet, cellRef(1, row), g.Matchup.ID)
		f.SetCellValue(gamesSheet, cellRef(2, row), g.Matchup.League)
		f.SetCellValue(gamesSheet, cellRef(3, row), g.Slot.Start.Format("01/02/2006"))
		f.SetCellValue(gamesSheet, cellRef(4, row), g.Slot.Start.Format("Mon"))
		f.SetCellValue(gamesSheet, cellRef(5, row), g.Slot.Start.Format("15:04"))
		f.SetCellValue(gamesSheet, cellRef(6, row), g.Slot.FieldID)
		f.SetCellValue(gamesSheet, cellRef(7, row), g.Matchup.Home)
		f.SetCellValue(gamesSheet, cellRef(8, row), g.Matchup.Away)
		f.SetCellValue(gamesSheet, cellRef(9, row), strings.Join(g.Umpires, "; "))
	}

	widths := map[string]float64{"A": 16, "B": 12, "C": 14, "D": 8, "E": 8, "F": 26, "G": 16, "H": 16, "I": 24}
	for col, w := range widths {
		f.SetColWidth(gamesSheet, col, col, w)
	}

	return nil
}

func writeTeamSheets(f *excelize.File, m *problem.Model, result *schedule.Result) error {
	for _, team := range m.Teams {
		sheet := team.ID
		f.NewSheet(sheet)

		headers := []string{"Date", "Day", "Time", "Field", "Opponent", "Home/Away", "Game"}
		for i, h := range headers {
			f.SetCellValue(sheet, cellRef(i+1, 1), h)
		}

		row := 2
		for _, g := range result.Games {
			var opponent, homeAway string
			switch team.ID {
			case g.Matchup.Home:
				opponent, homeAway = g.Matchup.Away, "Home"
			case g.Matchup.Away:
				opponent, homeAway = g.Matchup.Home, "Away"
			default:
				continue
			}
			f.SetCellValue(sheet, cellRef(1, row), g.Slot.Start.Format("01/02/2006"))
			f.SetCellValue(sheet, cellRef(2, row), g.Slot.Start.Format("Mon"))
			f.SetCellValue(sheet, cellRef(3, row), g.Slot.Start.Format("15:04"))
			f.SetCellValue(sheet, cellRef(4, row), g.Slot.FieldID)
			f.SetCellValue(sheet, cellRef(5, row), opponent)
			f.SetCellValue(sheet, cellRef(6, row), homeAway)
			f.SetCellValue(sheet, cellRef(7, row), g.Matchup.ID)
			row++
		}

		widths := map[string]float64{"A": 14, "B": 8, "C": 8, "D": 26, "E": 16, "F": 12, "G": 16}
		for col, w := range widths {
			f.SetColWidth(sheet, col, col, w)
		}
	}

	return nil
}

func writeUnresolvedSheet(f *excelize.File, result *schedule.Result) error {
	sheet := "Unresolved"
	f.NewSheet(sheet)

	headers := []string{"Game", "League", "Home", "Away", "Problem"}
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, 1), h)
	}

	row := 2
	for _, u := range result.Unresolved {
		f.SetCellValue(sheet, cellRef(1, row), u.Matchup.ID)
		f.SetCellValue(sheet, cellRef(2, row), u.Matchup.League)
		f.SetCellValue(sheet, cellRef(3, row), u.Matchup.Home)
		f.SetCellValue(sheet, cellRef(4, row), u.Matchup.Away)
		f.SetCellValue(sheet, cellRef(5, row), string(u.Reason))
		row++
	}
	for _, s := range result.Shortfalls {
		f.SetCellValue(sheet, cellRef(1, row), s.MatchupID)
		f.SetCellValue(sheet, cellRef(5, row),
			fmt.Sprintf("only %d of %d umpires at %s", s.Assigned, s.Required, s.Slot.Start.Format("01/02 15:04")))
		row++
	}

	return nil
}

// ReadSchedule parses the Games sheet of a workbook back into
// scheduled games so an edited schedule can be audited. Durations are
// resolved from the model's field increments.
func ReadSchedule(path string, m *problem.Model) ([]schedule.ScheduledGame, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(gamesSheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s sheet: %w", gamesSheet, err)
	}

	var games []schedule.ScheduledGame
	for i, row := range rows {
		if i == 0 || len(row) < 8 || row[0] == "" {
			continue
		}

		date, err := time.Parse("01/02/2006", row[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid date %q", i+1, row[2])
		}
		clock, err := time.Parse("15:04", row[4])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid time %q", i+1, row[4])
		}
		fieldID := row[5]

		var umpires []string
		if len(row) > 8 && row[8] != "" {
			umpires = strings.Split(row[8], "; ")
		}

		games = append(games, schedule.ScheduledGame{
			Matchup: problem.Matchup{ID: row[0], League: row[1], Home: row[6], Away: row[7]},
			Slot: schedule.Slot{
				FieldID:  fieldID,
				Start:    date.Add(time.Duration(clock.Hour()*60+clock.Minute()) * time.Minute),
				Duration: m.Increment(fieldID),
			},
			Umpires: umpires,
		})
	}

	return games, nil
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
