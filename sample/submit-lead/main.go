package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/smartplaces/community-api/internal/client"
	"github.com/smartplaces/community-api/internal/usecase"
)

// Programa d'exemple: envia un lead de prova contra una instància
// local de l'API.
func main() {
	endpoint := os.Getenv("SIGNUP_URL")
	if endpoint == "" {
		endpoint = "http://localhost:8080/community/signup"
	}

	form := client.New(endpoint)

	budgetMin := int64(150000)
	budgetMax := int64(300000)

	input := usecase.SignupInput{
		Email:         "prova@example.com",
		Name:          "Prova Comunitat",
		Intent:        "Compra",
		Zones:         []string{"Eixample", "Gràcia"},
		BudgetMin:     &budgetMin,
		BudgetMax:     &budgetMax,
		PropertyTypes: []string{"Pis"},
		Consent:       true,
		UTMSource:     "sample",
	}

	result, err := form.Submit(context.Background(), input)
	if err != nil {
		log.Fatalf("submit failed (%s): %v", form.State(), err)
	}
	if result == nil {
		log.Fatal("submission dropped")
	}

	fmt.Printf("lead %s registrat (%s)\n", result.Lead.ID, result.Lead.Email)
	fmt.Println(result.Confirmation)
}
