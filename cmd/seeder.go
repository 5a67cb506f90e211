package cmd

import (
	"fmt"
	"log"

	teamModel "github.com/eproba/server/internal/core/datamodel/team"
	userModel "github.com/eproba/server/internal/core/datamodel/user"
	worksheetModel "github.com/eproba/server/internal/core/datamodel/worksheet"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		_, db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			for _, table := range []string{"tasks", "worksheets", "users", "patrols", "teams"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		team := teamModel.Team{ID: uuid.New(), Name: "1st Demo Scout Team", ShortName: "1DST", IsVerified: true}
		if err := firstOrCreate(db, &team, "name = ?", team.Name); err != nil {
			log.Fatalf("failed to seed team: %v", err)
		}

		eagles := teamModel.Patrol{ID: uuid.New(), TeamID: team.ID, Name: "Eagles"}
		if err := firstOrCreate(db, &eagles, "team_id = ? AND name = ?", team.ID, eagles.Name); err != nil {
			log.Fatalf("failed to seed patrol: %v", err)
		}
		wolves := teamModel.Patrol{ID: uuid.New(), TeamID: team.ID, Name: "Wolves"}
		if err := firstOrCreate(db, &wolves, "team_id = ? AND name = ?", team.ID, wolves.Name); err != nil {
			log.Fatalf("failed to seed patrol: %v", err)
		}

		seedUsers := []userModel.User{
			{Email: "scout@eproba.example", Nickname: "Scout", Function: 0, PatrolID: &eagles.ID},
			{Email: "deputy@eproba.example", Nickname: "Deputy", Function: 1, PatrolID: &eagles.ID},
			{Email: "patrol-leader@eproba.example", Nickname: "PatrolLeader", Function: 2, PatrolID: &eagles.ID},
			{Email: "deputy-leader@eproba.example", Nickname: "DeputyLeader", Function: 3, PatrolID: &wolves.ID},
			{Email: "leader@eproba.example", Nickname: "Leader", Function: 4, PatrolID: &wolves.ID},
			{Email: "senior@eproba.example", Nickname: "Senior", Function: 5, PatrolID: &wolves.ID},
		}
		for i := range seedUsers {
			seedUsers[i].ID = uuid.New()
			seedUsers[i].PasswordHash = string(hash)
			seedUsers[i].IsActive = true
			if err := firstOrCreate(db, &seedUsers[i], "email = ?", seedUsers[i].Email); err != nil {
				log.Fatalf("failed to seed user %s: %v", seedUsers[i].Email, err)
			}
			fmt.Println("Seeded user:", seedUsers[i].Email)
		}

		scout := seedUsers[0]
		supervisor := seedUsers[2]
		sheet := worksheetModel.Worksheet{
			ID:           uuid.New(),
			Name:         "Second Class Badge",
			Description:  "Requirements for the second class badge",
			UserID:       &scout.ID,
			SupervisorID: &supervisor.ID,
			TeamID:       &team.ID,
			Tasks: []worksheetModel.Task{
				{ID: uuid.New(), Name: "Tie six basic knots", Category: "general", Order: 0},
				{ID: uuid.New(), Name: "Plan a day hike", Category: "general", Order: 1},
				{ID: uuid.New(), Name: "Keep a nature journal for a month", Category: "individual", Order: 2},
			},
		}
		if err := firstOrCreate(db, &sheet, "name = ? AND user_id = ?", sheet.Name, scout.ID); err != nil {
			log.Fatalf("failed to seed worksheet: %v", err)
		}
		fmt.Println("Seeded worksheet:", sheet.Name)

		template := worksheetModel.Worksheet{
			ID:          uuid.New(),
			Name:        "Second Class Badge Template",
			Description: "Template used to open new second class worksheets",
			TeamID:      &team.ID,
			IsTemplate:  true,
			Tasks: []worksheetModel.Task{
				{ID: uuid.New(), Name: "Tie six basic knots", Category: "general", Order: 0},
				{ID: uuid.New(), Name: "Plan a day hike", Category: "general", Order: 1},
			},
		}
		if err := firstOrCreate(db, &template, "name = ? AND is_template = ?", template.Name, true); err != nil {
			log.Fatalf("failed to seed template: %v", err)
		}
		fmt.Println("Seeded template:", template.Name)

		fmt.Println("Seeding complete. All users share the password:", password)
	},
}

func firstOrCreate(db *gorm.DB, record any, query string, args ...any) error {
	res := db.Where(query, args...).First(record)
	if res.Error == nil {
		return nil
	}
	if res.Error != gorm.ErrRecordNotFound {
		return res.Error
	}
	return db.Create(record).Error
}
