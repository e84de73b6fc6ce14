// Command seed loads a demo data set: three accounts, one per role, and a
// handful of inspection records owned by the inspector account. Existing
// accounts are reused, so the command is safe to run repeatedly.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"roadward.org/internal/identity"
	"roadward.org/internal/ors"
)

type seedUser struct {
	username string
	email    string
	password string
	role     identity.Role
}

var seedUsers = []seedUser{
	{"amina", "amina@roadward.org", "admin12345", identity.RoleAdmin},
	{"nurlan", "nurlan@roadward.org", "inspect123", identity.RoleInspector},
	{"dana", "dana@roadward.org", "viewer1234", identity.RoleViewer},
}

var seedRecords = []ors.CreateInput{
	{Vehicle: "KZ-482-ALA", RoadWorthinessScore: "92%", OverallTrafficScore: "A", ActionRequired: "none"},
	{Vehicle: "KZ-017-AST", RoadWorthinessScore: "85%", OverallTrafficScore: "B", ActionRequired: "replace wiper blades"},
	{Vehicle: "KZ-233-SHY", RoadWorthinessScore: "74%", OverallTrafficScore: "C", ActionRequired: "align headlights"},
	{Vehicle: "KZ-901-KGT", RoadWorthinessScore: "61%", OverallTrafficScore: "D", ActionRequired: "replace rear brake pads",
		Documents: []ors.Document{{
			TextDoc:     []ors.TextDoc{{Label: "brakes", Description: "rear pads below 2mm"}},
			Attachments: []string{},
		}}},
	{Vehicle: "KZ-555-PAV", RoadWorthinessScore: "38%", OverallTrafficScore: "F", ActionRequired: "full suspension overhaul"},
}

func main() {
	log.SetFlags(0)
	dsn := flag.String("dsn", os.Getenv("ROADWARD_PG_DSN"), "PostgreSQL DSN")
	flag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or ROADWARD_PG_DSN")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	users := identity.NewPGStore(db)
	idSvc, err := identity.NewService(users)
	if err != nil {
		log.Fatalf("identity service: %v", err)
	}
	orsSvc, err := ors.NewService(ors.NewPGStore(db))
	if err != nil {
		log.Fatalf("ors service: %v", err)
	}

	var inspector identity.User
	for _, su := range seedUsers {
		user, err := idSvc.Register(ctx, su.username, su.email, su.password, su.role)
		if errors.Is(err, identity.ErrConflict) {
			user, err = users.FindByEmail(ctx, su.email)
		}
		if err != nil {
			log.Fatalf("seed user %s: %v", su.username, err)
		}
		if user.Role == identity.RoleInspector {
			inspector = user
		}
		log.Printf("user %s (%s)", user.Username, user.Role)
	}
	if inspector.ID == "" {
		log.Fatal("no inspector account to own seed records")
	}

	existing, err := orsSvc.List(ctx, ors.Filter{InspectorID: inspector.ID})
	if err != nil {
		log.Fatalf("list records: %v", err)
	}
	if len(existing) > 0 {
		log.Printf("inspector already owns %d records, skipping record seed", len(existing))
		return
	}

	for _, in := range seedRecords {
		rec, err := orsSvc.Create(ctx, in, inspector)
		if err != nil {
			log.Fatalf("seed record %s: %v", in.Vehicle, err)
		}
		log.Printf("record %s (%s, %s)", rec.Vehicle, rec.RoadWorthinessScore, rec.OverallTrafficScore)
	}
}
