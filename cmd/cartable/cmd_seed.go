package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/user/cartable/internal/directory"
	"github.com/user/cartable/internal/types"
)

var seedContact string

func init() {
	seedCmd.Flags().StringVar(&seedContact, "contact", "+33612345678", "phone number for the demo parent")
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the directory with demo data",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	dir, err := directory.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open directory: %w", err)
	}
	defer dir.Close()

	ctx := context.Background()
	now := time.Now()

	school := types.School{ID: types.SchoolID(uuid.New().String()), Name: "Collège Jean Moulin"}
	if err := dir.AddSchool(ctx, school); err != nil {
		return err
	}

	parent := types.Parent{
		ID:        types.ParentID(uuid.New().String()),
		FirstName: "Sophie",
		LastName:  "Dupont",
		Contact:   seedContact,
		Channel:   "whatsapp",
		Reminders: true,
	}
	if err := dir.AddParent(ctx, parent); err != nil {
		return err
	}

	marie := types.Student{
		ID:        types.StudentID(uuid.New().String()),
		ParentID:  parent.ID,
		SchoolID:  school.ID,
		FirstName: "Marie",
		LastName:  "Dupont",
		Class:     "5ème B",
	}
	paul := types.Student{
		ID:        types.StudentID(uuid.New().String()),
		ParentID:  parent.ID,
		SchoolID:  school.ID,
		FirstName: "Paul",
		LastName:  "Dupont",
		Class:     "3ème A",
	}
	for _, st := range []types.Student{marie, paul} {
		if err := dir.AddStudent(ctx, st); err != nil {
			return err
		}
	}

	grades := []types.Grade{
		{StudentID: marie.ID, Subject: "mathematique", Score: 15.5},
		{StudentID: marie.ID, Subject: "mathematique", Score: 12.0},
		{StudentID: marie.ID, Subject: "francais", Score: 17.0},
		{StudentID: marie.ID, Subject: "anglais", Score: 13.5},
		{StudentID: paul.ID, Subject: "mathematique", Score: 9.0},
		{StudentID: paul.ID, Subject: "histoire", Score: 14.0},
	}
	for _, g := range grades {
		if err := dir.AddGrade(ctx, g); err != nil {
			return err
		}
	}

	attendance := []types.AttendanceRecord{
		{StudentID: marie.ID, Date: now.AddDate(0, 0, -1), Status: "présent"},
		{StudentID: marie.ID, Date: now.AddDate(0, 0, -2), Status: "absent"},
		{StudentID: paul.ID, Date: now.AddDate(0, 0, -1), Status: "absent"},
	}
	for _, a := range attendance {
		if err := dir.AddAttendance(ctx, a); err != nil {
			return err
		}
	}

	homework := []types.HomeworkItem{
		{StudentID: marie.ID, Subject: "mathematique", Description: "Exercices 4 à 9 page 52", DueDate: now.AddDate(0, 0, 1)},
		{StudentID: marie.ID, Subject: "francais", Description: "Lire le chapitre 3", DueDate: now.AddDate(0, 0, 3)},
		{StudentID: paul.ID, Subject: "histoire", Description: "Réviser la Révolution française", DueDate: now.AddDate(0, 0, 2)},
	}
	for _, hw := range homework {
		if err := dir.AddHomework(ctx, hw); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stdout, "Seeded demo data in %s (parent contact %s)\n", cfg.Database.Path, seedContact)
	return nil
}
