package notice

import (
	"time"

	"sitterboard/internal/common"
)

type Status string

const (
	StatusOpen   Status = "open"
	StatusFilled Status = "filled"
	StatusClosed Status = "closed"
)

// KeyPrefix namespaces notice records in the key-value store.
const KeyPrefix = "notice:"

func Key(id common.UUID) string {
	return KeyPrefix + id.String()
}

// Fields is the descriptive payload of a notice. The lifecycle never reads it.
type Fields struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Address     string  `json:"address"`
	Location    string  `json:"location"`
	PayRate     float64 `json:"payRate"`
	Duration    string  `json:"duration"`
	AgeGroup    string  `json:"ageGroup"`
}

// Notice is stored as one record together with all of its applications, so a
// single compare-and-swap covers every cross-application invariant.
type Notice struct {
	ID        common.UUID `json:"id"`
	OwnerID   common.UUID `json:"parentId"`
	OwnerName string      `json:"parentName"`
	Fields
	Status                Status        `json:"status"`
	SelectedApplicationID common.UUID   `json:"selectedApplicationId,omitempty"`
	SelectedStudentID     common.UUID   `json:"selectedStudentId,omitempty"`
	Applications          []Application `json:"applications"`
	CreatedAt             time.Time     `json:"createdAt"`
	UpdatedAt             time.Time     `json:"updatedAt"`
}

// Summary is the read-only slice of a notice shown next to a student's application.
type Summary struct {
	ID        common.UUID `json:"id"`
	Title     string      `json:"title"`
	Date      string      `json:"date"`
	Time      string      `json:"time"`
	Location  string      `json:"location"`
	PayRate   float64     `json:"payRate"`
	OwnerName string      `json:"parentName"`
	Status    Status      `json:"status"`
}

func (n Notice) Summary() Summary {
	return Summary{
		ID:        n.ID,
		Title:     n.Title,
		Date:      n.Date,
		Time:      n.Time,
		Location:  n.Location,
		PayRate:   n.PayRate,
		OwnerName: n.OwnerName,
		Status:    n.Status,
	}
}

func (n Notice) IsOwnedBy(id common.UUID) bool {
	return id != "" && n.OwnerID == id
}

// ApplicationByID returns the index of the application, or -1.
func (n Notice) ApplicationByID(id common.UUID) int {
	for i := range n.Applications {
		if n.Applications[i].ID == id {
			return i
		}
	}
	return -1
}

// ApplicationByStudent returns the index of the student's application, or -1.
func (n Notice) ApplicationByStudent(studentID common.UUID) int {
	for i := range n.Applications {
		if n.Applications[i].StudentID == studentID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy; the applications slice is never shared.
func (n Notice) Clone() Notice {
	out := n
	out.Applications = make([]Application, len(n.Applications))
	copy(out.Applications, n.Applications)
	return out
}

// VisibleTo hides other students' applications from anyone but the owner.
func (n Notice) VisibleTo(viewer common.UUID) Notice {
	out := n.Clone()
	if n.IsOwnedBy(viewer) {
		return out
	}
	out.Applications = out.Applications[:0]
	for _, app := range n.Applications {
		if app.StudentID == viewer {
			out.Applications = append(out.Applications, app)
		}
	}
	return out
}
