// Package demo loads a small marketplace for local development. Everything is
// created through the services, so the seeded data obeys the same rules as
// data created over HTTP.
package demo

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"sitterboard/internal/app"
	"sitterboard/internal/common"
	"sitterboard/internal/domain/notice"
	"sitterboard/internal/domain/user"
)

type person struct {
	key  string
	name string
	role user.Role
}

var people = []person{
	{key: "demo-parent", name: "Sarah Demo (Parent)", role: user.RoleParent},
	{key: "demo-parent-2", name: "John Williams", role: user.RoleParent},
	{key: "demo-parent-3", name: "Lisa Anderson", role: user.RoleParent},
	{key: "demo-student", name: "Alex Demo (Student)", role: user.RoleStudent},
	{key: "demo-student-1", name: "Emma Johnson", role: user.RoleStudent},
	{key: "demo-student-2", name: "Michael Chen", role: user.RoleStudent},
	{key: "demo-student-3", name: "Jessica Martinez", role: user.RoleStudent},
	{key: "demo-student-4", name: "David Kim", role: user.RoleStudent},
}

type application struct {
	student string
	message string
	status  notice.ApplicationStatus
}

type listing struct {
	owner        string
	fields       notice.Fields
	applications []application
}

var listings = []listing{
	{
		owner: "demo-parent-2",
		fields: notice.Fields{
			Title:       "Weekend Morning Childcare",
			Description: "Looking for someone to watch our energetic 4-year-old on Sunday mornings. Must be comfortable with active play and outdoor activities.",
			Date:        "2025-10-13",
			Time:        "9:00 AM - 12:00 PM",
			Address:     "789 Pine Road, Suburbs, CA 94104",
			Location:    "Suburbs",
			PayRate:     16,
			Duration:    "3 hours",
			AgeGroup:    "4",
		},
	},
	{
		owner: "demo-parent",
		fields: notice.Fields{
			Title:       "After School Care - Weekdays",
			Description: "Need a reliable babysitter to pick up my daughter from school and watch her until I get home from work. Help with homework is a plus.",
			Date:        "2025-10-14",
			Time:        "3:30 PM - 6:00 PM",
			Address:     "456 Oak Avenue, Near University, CA 94103",
			Location:    "Near University",
			PayRate:     15,
			Duration:    "2.5 hours",
			AgeGroup:    "8",
		},
		applications: []application{
			{student: "demo-student-4", message: "I'm available on weekdays and have experience with after-school care.", status: notice.ApplicationPending},
			{student: "demo-student-3", message: "I have experience tutoring elementary students and can help with homework.", status: notice.ApplicationAccepted},
		},
	},
	{
		owner: "demo-parent",
		fields: notice.Fields{
			Title:       "Saturday Evening Babysitting",
			Description: "Looking for a responsible babysitter for our two kids on Saturday evening: simple dinner, playtime and the bedtime routine.",
			Date:        "2025-10-18",
			Time:        "6:00 PM - 11:00 PM",
			Address:     "123 Maple Street, Downtown, CA 94102",
			Location:    "Downtown",
			PayRate:     18,
			Duration:    "5 hours",
			AgeGroup:    "5, 8",
		},
		applications: []application{
			{student: "demo-student-1", message: "I have 3 years of experience babysitting children ages 4-10 and am CPR certified.", status: notice.ApplicationPending},
			{student: "demo-student-2", message: "I'm studying early childhood education and volunteer at the community center.", status: notice.ApplicationPending},
		},
	},
	{
		owner: "demo-parent-3",
		fields: notice.Fields{
			Title:       "Date Night Babysitter Needed",
			Description: "Twin boys, age 6, very well-behaved. Dinner will be prepared; we need help with supervision, playtime and bedtime.",
			Date:        "2025-10-11",
			Time:        "7:00 PM - 11:00 PM",
			Address:     "321 Elm Street, Downtown, CA 94102",
			Location:    "Downtown",
			PayRate:     20,
			Duration:    "4 hours",
			AgeGroup:    "6, 6",
		},
		applications: []application{
			{student: "demo-student", message: "I have experience with twins and am very comfortable with bedtime routines.", status: notice.ApplicationPending},
		},
	},
}

type Profile struct {
	Key  string
	ID   common.UUID
	Name string
	Role user.Role
}

type Result struct {
	Profiles []Profile
	Notices  []common.UUID
}

// ProfileID is stable across runs so issued tokens keep working after a reseed.
func ProfileID(key string) common.UUID {
	return common.UUID(uuid.NewSHA1(uuid.NameSpaceURL, []byte("sitterboard:"+key)).String())
}

type Services struct {
	Profiles     *app.ProfileService
	Notices      *app.NoticeService
	Applications *app.ApplicationService
}

// Seed upserts the demo profiles and creates a fresh set of demo notices.
func Seed(ctx context.Context, svc Services) (Result, error) {
	var result Result
	callers := make(map[string]user.Caller, len(people))
	for _, p := range people {
		id := ProfileID(p.key)
		if _, err := svc.Profiles.Put(ctx, id, p.name, p.key+"@example.com", string(p.role)); err != nil {
			return Result{}, fmt.Errorf("seed profile %s: %w", p.key, err)
		}
		callers[p.key] = user.Caller{ID: id, Name: p.name, Role: p.role}
		result.Profiles = append(result.Profiles, Profile{Key: p.key, ID: id, Name: p.name, Role: p.role})
	}

	for _, l := range listings {
		owner := callers[l.owner]
		created, err := svc.Notices.Create(ctx, owner, l.fields)
		if err != nil {
			return Result{}, fmt.Errorf("seed notice %q: %w", l.fields.Title, err)
		}
		result.Notices = append(result.Notices, created.ID)

		decisions := make(map[common.UUID]notice.ApplicationStatus)
		for _, a := range l.applications {
			submitted, err := svc.Applications.Apply(ctx, callers[a.student], created.ID, a.message)
			if err != nil {
				return Result{}, fmt.Errorf("seed application for %q: %w", l.fields.Title, err)
			}
			if a.status != notice.ApplicationPending {
				decisions[submitted.ID] = a.status
			}
		}
		for id, status := range decisions {
			if _, err := svc.Applications.UpdateStatus(ctx, owner, created.ID, id, string(status)); err != nil {
				return Result{}, fmt.Errorf("seed decision for %q: %w", l.fields.Title, err)
			}
		}
	}
	return result, nil
}
