package main

import (
	"context"
	"flag"
	"log"

	"kindling_server/services"
)

// Offline reconciliation tool. Run with -dry-run to see what would be
// merged without writing anything.
func main() {
	dryRun := flag.Bool("dry-run", false, "report what would change without writing")
	flag.Parse()

	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}

	store := services.NewDynamoConversationStore(dynamoService)
	repair := services.NewRepairService(store)

	report, err := repair.Run(context.Background(), *dryRun)
	if err != nil {
		log.Fatalf("Repair failed: %v (scanned %d, merged %d, deleted %d)",
			err, report.Scanned, report.Merged, report.Deleted)
	}

	mode := "applied"
	if *dryRun {
		mode = "dry run"
	}
	log.Printf("Repair complete (%s): scanned=%d duplicateGroups=%d merged=%d deleted=%d",
		mode, report.Scanned, report.DuplicateGroups, report.Merged, report.Deleted)
}
