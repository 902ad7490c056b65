// Package rooms implements the room identifier grammar:
//
//	workbook:{workbookId}                          whole-workbook room
//	workbook:{workbookId}:worksheet:{worksheetId}  single-worksheet room
//	workbook:{workbookId}:*                        wildcard, auth grants only
//
// Wildcards are never connected to directly; they only appear in the
// patterns attached to a collab access token.
package rooms

import (
	"fmt"
	"regexp"
)

const (
	idPattern        = `[0-9a-zA-Z-]+`
	workbookPattern  = `^workbook:(` + idPattern + `)$`
	worksheetPattern = `^workbook:(` + idPattern + `):worksheet:(` + idPattern + `)$`
)

var (
	workbookRe  = regexp.MustCompile(workbookPattern)
	worksheetRe = regexp.MustCompile(worksheetPattern)
	allWildcard = "workbook:*"
)

type RoomType string

const (
	TypeWorkbook  RoomType = "workbook"
	TypeWorksheet RoomType = "worksheet"
)

// RoomID is the parsed form of a room identifier.
type RoomID struct {
	Type        RoomType
	WorkbookID  string
	WorksheetID string
}

func WorkbookRoomID(workbookID string) string {
	return fmt.Sprintf("workbook:%s", workbookID)
}

func WorksheetRoomID(workbookID, worksheetID string) string {
	return fmt.Sprintf("workbook:%s:worksheet:%s", workbookID, worksheetID)
}

// WorkbookWildcard builds the grant pattern covering a workbook and all of
// its worksheet rooms.
func WorkbookWildcard(workbookID string) string {
	return fmt.Sprintf("workbook:%s:*", workbookID)
}

// AllWorkbooksWildcard is the development-mode grant covering every room.
func AllWorkbooksWildcard() string {
	return allWildcard
}

func IsValid(roomID string) bool {
	return workbookRe.MatchString(roomID) || worksheetRe.MatchString(roomID)
}

// Parse splits a room identifier into its parts. Wildcard patterns are not
// valid room identifiers and are rejected here.
func Parse(roomID string) (*RoomID, error) {
	if m := worksheetRe.FindStringSubmatch(roomID); m != nil {
		return &RoomID{Type: TypeWorksheet, WorkbookID: m[1], WorksheetID: m[2]}, nil
	}
	if m := workbookRe.FindStringSubmatch(roomID); m != nil {
		return &RoomID{Type: TypeWorkbook, WorkbookID: m[1]}, nil
	}
	return nil, fmt.Errorf("invalid room id %q", roomID)
}

// ExtractWorksheetID returns the worksheet part of a worksheet-scoped room
// id, or "" for workbook-scoped rooms.
func ExtractWorksheetID(roomID string) string {
	if m := worksheetRe.FindStringSubmatch(roomID); m != nil {
		return m[2]
	}
	return ""
}

// Matches reports whether a concrete room id is covered by a grant pattern.
// A pattern is either a literal room id, a per-workbook wildcard, or the
// all-workbooks wildcard.
func Matches(pattern, roomID string) bool {
	if pattern == roomID {
		return true
	}
	if pattern == allWildcard {
		return IsValid(roomID)
	}
	parsed, err := Parse(roomID)
	if err != nil {
		return false
	}
	return pattern == WorkbookWildcard(parsed.WorkbookID)
}
