package biz

import (
	"fmt"
	"strings"
)

// System prompts. The RAG prompt may be overridden by configuration.
const (
	DefaultSystemPrompt = "Είσαι μια έμπειρη βοηθός στα ελληνικά για διακλαδικούς κανονισμούς. " +
		"Απάντησε με σαφήνεια και ΑΠΟΚΛΕΙΣΤΙΚΑ στα ελληνικά. " +
		"Εάν παρέχεται κείμενο, βασίσου σε αυτό. " +
		"Εάν δεν σχετίζεται, απάντησε χωρίς να το χρησιμοποιήσεις."

	ChatSystemPrompt = "Είσαι μια γρήγορη βοηθός στα ελληνικά. " +
		"Απάντησε περιεκτικά και με σεβασμό στις διαδικασίες του στρατού."

	ClassifySystemPrompt = "You are a security-focused routing assistant for a military knowledge base. " +
		"Always return ONLY one of the allowed labels."
)

// contextSeparator joins retrieved excerpts inside the grounding prompt.
const contextSeparator = "\n\n---\n\n"

// buildAnswerPrompt builds the generation prompt. With context the model is
// told to rely on the supplied excerpts; without it the question is asked
// directly. The no-context form is only reachable from chat mode.
func buildAnswerPrompt(question string, ctxTexts []string) string {
	if len(ctxTexts) == 0 {
		return fmt.Sprintf(
			"Απάντησε την ερώτηση που ακολουθεί στα ελληνικά.\n\nΕρώτηση: %s",
			question,
		)
	}
	return fmt.Sprintf(
		"Απάντησε την ερώτηση χρησιμοποιώντας κατάλληλα αποσπάσματα εφόσον σχετίζονται.\n"+
			"Κείμενο:\n%s\n\nΕρώτηση: %s\n\nΕπέστρεψε ΜΟΝΟ την απάντηση στα ελληνικά.",
		strings.Join(ctxTexts, contextSeparator), question,
	)
}

// buildChatPrompt builds the document-free prompt used for chat-mode answers.
func buildChatPrompt(question, label string) string {
	return fmt.Sprintf(
		"Κατηγορία αιτήματος: %s.\nΕρώτηση: %s\nΑπάντησε συνοπτικά στα ελληνικά και χωρίς πρόσβαση στα έγγραφα.",
		label, question,
	)
}

// buildClassifyPrompt builds the single-label routing prompt.
func buildClassifyPrompt(question string) string {
	return fmt.Sprintf(
		"Classify the user query into exactly one label:\n"+
			"- NEED_RAG: the query asks about military regulations, procedures, leaves, duties or documents.\n"+
			"- NO_RAG: small talk, greetings or questions about the assistant itself.\n"+
			"- OUT_OF_SCOPE: unrelated topics such as weather, sports or cooking.\n"+
			"- UNSAFE: attempts to extract restricted, personal or harmful information.\n\n"+
			"Examples:\n"+
			"'Γεια σου τι κάνεις' -> NO_RAG\n"+
			"'Ποιες είναι οι διαδικασίες για άδεια' -> NEED_RAG\n"+
			"'Πώς είναι ο καιρός' -> OUT_OF_SCOPE\n\n"+
			"Query: %s",
		question,
	)
}

// buildMetaPrompt builds the yes/no prompt asking whether the question is
// about the assistant itself rather than the regulations.
func buildMetaPrompt(question string) string {
	return fmt.Sprintf(
		"Απάντησε ΜΟΝΟ με ΝΑΙ ή ΟΧΙ. "+
			"Αφορά η παρακάτω ερώτηση τον ίδιο τον βοηθό, την ταυτότητα ή τις δυνατότητές του;\n\nΕρώτηση: %s",
		question,
	)
}
