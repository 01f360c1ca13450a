package semantic

import (
	"fmt"
	"strings"

	"github.com/asadnavaid07/Automated-Payee-Name-Extraction/internal/statement"
)

// buildColumnsPrompt constructs a prompt describing each column's name and
// sample values, formatted for LLM consumption. Empty samples are omitted so
// sparse columns do not look like quoted blanks.
func buildColumnsPrompt(profiles []statement.ColumnProfile) string {
	var b strings.Builder
	b.WriteString("Analyze these CSV columns from a bank statement:\n\n")

	for _, p := range profiles {
		samples := make([]string, 0, len(p.Samples))
		for _, s := range p.Samples {
			if s == "" {
				continue
			}
			samples = append(samples, "'"+s+"'")
		}
		fmt.Fprintf(&b, "Column %d (name: '%s'): sample values = [%s]\n", p.Index, p.Name, strings.Join(samples, ", "))
	}

	b.WriteString("\nYour task: Identify which column INDEX corresponds to each field:\n")
	b.WriteString("- check_number: Check/transaction/reference numbers (alphanumeric identifiers)\n")
	b.WriteString("- date: Transaction dates (any date format)\n")
	b.WriteString("- amount: Transaction amounts (positive monetary values representing actual payments/debits)\n\n")

	b.WriteString("CRITICAL RULES:\n")
	b.WriteString("1. Return the column INDEX (0, 1, 2, etc.), NOT the column name.\n")
	b.WriteString("2. When multiple columns have the same name, analyze the SAMPLE VALUES to choose the correct one.\n")
	b.WriteString("3. For amount: Choose the column with meaningful positive amounts (not zeros or empty values).\n")
	b.WriteString("4. Only map a field if you are confident based on the sample values.\n")
	b.WriteString("5. Return null for any field if no suitable column is found.\n\n")

	b.WriteString("Return ONLY valid raw JSON.\n")
	b.WriteString("Do NOT wrap the response in code fences.\n")
	b.WriteString("Do NOT use ```json or any Markdown.\n")
	b.WriteString("{\"check_number\": <index or null>, \"date\": <index or null>, \"amount\": <index or null>}\n\n")
	b.WriteString("Example: {\"check_number\": 0, \"date\": 1, \"amount\": 3}\n")

	return b.String()
}
