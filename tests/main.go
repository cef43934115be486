package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"curaconnect/config"
	"curaconnect/database"
	"curaconnect/models"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

// Seeds the doctors collection with sample practitioners for local
// development. Existing doctors are wiped first.
func main() {
	config.LoadConfig()
	database.InitDB()
	coll := database.DB().Collection("doctors")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
		log.Fatalf("Failed to clear doctors collection: %v", err)
	}

	specialities := []string{"cardiology", "dermatology", "pediatrics", "orthopedics", "general"}
	locations := []string{"Pune", "Mumbai", "Bangalore", "Delhi"}

	schedules := []struct {
		days  []int
		hours models.WorkingHours
	}{
		{models.DefaultWorkingDays, models.DefaultWorkingHours},
		{[]int{1, 2, 3, 4, 5}, models.WorkingHours{Start: "09:00", End: "17:00"}},
		{[]int{2, 4, 6}, models.WorkingHours{Start: "14:00", End: "20:00"}},
		{[]int{0, 6}, models.WorkingHours{Start: "10:00", End: "13:00"}},
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("$Password1234"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	rand.Seed(time.Now().UnixNano())
	var doctors []interface{}
	counter := 1
	for _, speciality := range specialities {
		for i := 0; i < 4; i++ {
			schedule := schedules[rand.Intn(len(schedules))]
			fee := float64(300 + rand.Intn(8)*100)

			doctors = append(doctors, models.Doctor{
				ID:              fmt.Sprintf("doc-%d", counter),
				Name:            fmt.Sprintf("Dr. %s %d", speciality, counter),
				Email:           fmt.Sprintf("%s_doctor_%d@example.com", speciality, counter),
				PasswordHash:    string(hashed),
				Speciality:      speciality,
				Location:        locations[rand.Intn(len(locations))],
				WorkingDays:     schedule.days,
				WorkingHours:    schedule.hours,
				ConsultationFee: fee,
				MeetingPlatform: models.DefaultMeetingPlatform,
				CreatedAt:       time.Now(),
				UpdatedAt:       time.Now(),
			})
			counter++
		}
	}

	res, err := coll.InsertMany(ctx, doctors)
	if err != nil {
		log.Fatalf("Failed to insert doctors: %v", err)
	}
	fmt.Printf("Inserted %d doctors\n", len(res.InsertedIDs))
}
