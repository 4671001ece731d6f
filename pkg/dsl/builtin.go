package dsl

import (
	"fmt"

	"github.com/aretw0/sheetpilot/pkg/domain"
)

// Built-in scenario IDs used by simulation mode.
const (
	ScenarioSimulate1 = "simulate-1"
	ScenarioSimulate2 = "simulate-2"
)

// Builtins returns the scenarios shipped with the agent.
func Builtins() []domain.Scenario {
	lib := NewLibrary()

	lib.Add(ScenarioSimulate1).
		Describe("Bold column", "Fills A1:A10, makes it bold and stops before the last message.").
		Select("A1:A10").
		Set("Test Data").
		Format("bold").
		TellUser("Bold formatting applied to selected cells.").
		Drag("").
		Terminate().
		TellUser("This message won't be processed since execution stops at 'Terminate'.")

	report := lib.Add(ScenarioSimulate2).
		Describe("Price report", "Products, prices, a discount formula dragged down, then a critical stop.")
	report.TellUser("Starting report automation...")
	for i := 1; i <= 10; i++ {
		report.Select(fmt.Sprintf("A%d", i)).Set(fmt.Sprintf("Product %c", 'A'+i-1))
	}
	report.TellUser("Product names set in column A.")
	for i := 1; i <= 10; i++ {
		report.Select(fmt.Sprintf("B%d", i)).Set(fmt.Sprint(i * 10))
	}
	report.Select("B1:B10").
		FormatWith(numberFormat("$#,##0.00")).
		TellUser("Prices set in column B with currency format.").
		Select("C1:C10").
		Set("=B1*0.9").
		Drag("").
		TellUser("Discounted prices calculated in column C.").
		TellUser("A critical issue was detected. Stopping execution.").
		Terminate().
		Select("D1:D10").
		Set("This won't be processed").
		TellUser("This message won't appear.")

	scenarios, err := lib.Build()
	if err != nil {
		panic(err)
	}
	return scenarios
}
