package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/finchdb/finchdb/internal/db"
)

const prompt = "finchdb> "

func main() {
	log.SetFlags(0)

	database := db.New()

	if len(os.Args) > 1 {
		f, err := os.Open(os.Args[1])
		if err != nil {
			log.Fatalf("Error opening script: %v", err)
		}
		defer f.Close()
		runStatements(database, f, false)
		return
	}

	fmt.Println("finchdb - type a statement per line, QUIT to exit")
	runStatements(database, os.Stdin, true)
}

func runStatements(database *db.Database, in io.Reader, interactive bool) {
	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Print(prompt)
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil && err != io.EOF {
				log.Printf("Error reading input: %v", err)
			}
			return
		}

		stmt := strings.TrimSpace(scanner.Text())
		if stmt == "" || strings.HasPrefix(stmt, "--") {
			continue
		}
		if upper := strings.ToUpper(stmt); upper == "QUIT" || upper == "EXIT" {
			fmt.Println("Goodbye!")
			return
		}

		res, err := database.Execute(strings.TrimSuffix(stmt, ";"))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		printResult(res)
	}
}

func printResult(res *db.Result) {
	if res.Plan != "" {
		fmt.Println(res.Plan)
	}
	if res.Columns != nil {
		fmt.Println(strings.Join(res.Columns, " | "))
		for _, row := range res.Rows {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = v.String()
			}
			fmt.Println(strings.Join(cells, " | "))
		}
		fmt.Printf("%d rows (estimated io %d)\n", len(res.Rows), res.EstimatedIO)
		return
	}
	if res.Message != "" {
		fmt.Println(res.Message)
		return
	}
	// EXPLAIN: plan only
	fmt.Printf("estimated io %d\n", res.EstimatedIO)
}
