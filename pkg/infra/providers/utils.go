package providers

import "strings"

// FormatInstructions renders source passages as a bulleted block, skipping
// blank ones.
func FormatInstructions(instr []string) string {
	var b strings.Builder
	b.WriteString("[Historical sources]\n")
	for _, passage := range instr {
		if strings.TrimSpace(passage) == "" {
			continue
		}
		b.WriteString("- ")
		b.WriteString(passage)
		b.WriteByte('\n')
	}
	return b.String()
}
