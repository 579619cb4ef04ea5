package corpus

import "strings"

const correctEmail = "kontur_course_hi@mail.ru"

// tooLongEmail is a syntactically plausible address far over the 254 character limit.
var tooLongEmail = strings.Repeat("kontur_course_hi", 16) + "@mail.ru"

func defaultCases() []Case {
	return []Case{
		NewCase(BaselineValid, correctEmail, "simple address"),
		NewCase(BaselineValid, "first.last@example.com", "dot in local part"),
		NewCase(BaselineValid, "user123@mail.example.co.uk", "subdomains"),
		NewCase(BaselineValid, "a@b.co", "shortest parts"),

		NewCase(EdgeValid, `"john..doe"@example.com`, "quoted local part with double dot"),
		NewCase(EdgeValid, `"very unusual"@example.com`, "quoted local part with space"),
		NewCase(EdgeValid, "user@[192.168.0.1]", "IP literal domain"),
		NewCase(EdgeValid, "user+tag@example.com", "plus addressing"),
		NewCase(EdgeValid, "user@example.рф", "internationalized TLD"),
		NewCase(EdgeValid, "user@xn--80ak6aa92e.com", "punycode domain"),

		NewCase(BaselineInvalid, "", "empty email"),
		NewCase(BaselineInvalid, "kontur_course_hi.mail.ru", "missing at sign"),
		NewCase(BaselineInvalid, "kontur_course_hi@mail@sobaka.ru", "two at signs"),
		NewCase(BaselineInvalid, ".user@mail.ru", "leading dot in local part"),
		NewCase(BaselineInvalid, "user.@mail.ru", "trailing dot in local part"),
		NewCase(BaselineInvalid, "user..name@mail.ru", "double dot in local part"),
		NewCase(BaselineInvalid, "почта@mail.ru", "non-ASCII local part"),
		NewCase(BaselineInvalid, "user(comment)@mail.ru", "bracketed comment"),
		NewCase(BaselineInvalid, "user@mail.123", "numeric TLD"),
		NewCase(BaselineInvalid, "user@[999.168.0.1]", "malformed IP literal"),
		NewCase(BaselineInvalid, "user@mail..ru", "double dot in domain"),
		NewCase(BaselineInvalid, `kontur_course_hi@mail_nesobaka.ru"Hehe`, "stray quote after domain"),

		NewCase(AdversarialInvalid, tooLongEmail, "oversized address"),
		NewCase(AdversarialInvalid, "a@mail.ru'); DROP TABLE Emails", "SQL fragment payload"),
		NewCase(AdversarialInvalid, "a@a.a<script>alert(XXX)</script>", "script tag payload"),
	}
}

// Default returns the built-in corpus. A new Corpus is built on every call.
func Default() (*Corpus, error) {
	return New(defaultCases()...)
}

// ReferenceEmail is the accepted address used by scenarios that are not about email
// validity, such as gender selection.
const ReferenceEmail = correctEmail
