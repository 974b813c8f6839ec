package email

import "fmt"

// MagicLinkMessage builds the passwordless sign-in email.
func MagicLinkMessage(link string) (subject, html, text string) {
	subject = "Your sign-in link"
	html = fmt.Sprintf(`<p>Click the link below to sign in. It expires in 20 minutes.</p><p><a href=%q>Sign in</a></p>`, link)
	text = fmt.Sprintf("Click the link below to sign in. It expires in 20 minutes.\n\n%s\n", link)
	return subject, html, text
}

// QuestionAskedMessage notifies an admin about a new dataroom question.
func QuestionAskedMessage(dataroomName, preview, unsubscribeURL string) (subject, html, text string) {
	subject = fmt.Sprintf("New question in %s", dataroomName)
	html = fmt.Sprintf(`<p>A viewer asked a question in <strong>%s</strong>:</p><blockquote>%s</blockquote><p><a href=%q>Unsubscribe</a></p>`,
		dataroomName, preview, unsubscribeURL)
	text = fmt.Sprintf("A viewer asked a question in %s:\n\n%s\n\nUnsubscribe: %s\n", dataroomName, preview, unsubscribeURL)
	return subject, html, text
}

// QuestionAnsweredMessage notifies the viewer their question was answered.
func QuestionAnsweredMessage(dataroomName, answer, unsubscribeURL string) (subject, html, text string) {
	subject = fmt.Sprintf("Your question in %s was answered", dataroomName)
	html = fmt.Sprintf(`<p>Your question in <strong>%s</strong> received an answer:</p><blockquote>%s</blockquote><p><a href=%q>Unsubscribe</a></p>`,
		dataroomName, answer, unsubscribeURL)
	text = fmt.Sprintf("Your question in %s received an answer:\n\n%s\n\nUnsubscribe: %s\n", dataroomName, answer, unsubscribeURL)
	return subject, html, text
}
