package user

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/semsync/semsync/core"
)

var (
	usernameOrEmailTag  = "username_or_email"
	usernameOrEmailText = "one of username or email is required"

	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdComplexityTag  = "pwdcplx"
	pwdComplexityText = "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"
	specialRegex      = regexp.MustCompile("[^A-Za-z0-9]")

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to user attributes"

	pwdNoCommonTag  = "pwdnocommon"
	pwdNoCommonText = "password is too common"
	commonPasswords []string

	commonPasswordsPath = filepath.Join("assets", "common-passwords.txt.gz")
)

// InitValidators registers the user validators. core.InitValidators must be called first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(userStructValidation, NewUser{}, SetUserPassword{})

	for tag, text := range map[string]string{
		usernameOrEmailTag: usernameOrEmailText,
		pwdMinLenTag:       pwdMinLenText,
		pwdNoSpaceTag:      pwdNoSpaceText,
		pwdNotAllNumTag:    pwdNotAllNumText,
		pwdComplexityTag:   pwdComplexityText,
		pwdAttrSimTag:      pwdAttrSimText,
		pwdNoCommonTag:     pwdNoCommonText,
	} {
		core.RegisterCustomTranslation(validate, translator, tag, text)
	}
}

// LoadCommonPasswords loads the gzipped common passwords list (one per line) from the assets dir.
// The common password check is skipped when the list cannot be read.
func LoadCommonPasswords(logger core.Logger) {
	pwds := make([]string, 0, 128)
	file, err := os.Open(filepath.Join(core.Getwd(), commonPasswordsPath))
	if err != nil {
		logger.Warn("common passwords not loaded", err)
		return
	}
	defer func() { _ = file.Close() }()

	gzRdr, err := gzip.NewReader(file)
	if err != nil {
		logger.Warn("common passwords not loaded", err)
		return
	}
	scanner := bufio.NewScanner(gzRdr)
	for scanner.Scan() {
		if pwd := strings.ToLower(strings.TrimSpace(scanner.Text())); pwd != "" {
			pwds = append(pwds, pwd)
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("common passwords not loaded", err)
		return
	}
	sort.Strings(pwds)
	commonPasswords = pwds
}

// Custom Validators

// userStructValidation does struct level validation on NewUser and SetUserPassword structs.
func userStructValidation(sl validator.StructLevel) {
	switch v := sl.Current().Interface().(type) {
	case NewUser:
		validateUsernameAndEmail(v, sl)
		validatePassword(v.Password, sl, v.Name, v.Username, v.Email)
	case SetUserPassword:
		validatePassword(v.Password, sl, v.usr.Name, v.usr.Username, v.usr.Email)
	}
}

// validateUsernameAndEmail checks that one of Username or Email is provided
func validateUsernameAndEmail(nu NewUser, sl validator.StructLevel) {
	if len(nu.Username) == 0 && len(nu.Email) == 0 {
		sl.ReportError(nu.Username, "username", "Username", usernameOrEmailTag, "")
		sl.ReportError(nu.Email, "email", "Email", usernameOrEmailTag, "")
	}
}

// validatePassword applies the password policy to provided password:
// - minLen: 8
// - no whitespace
// - no all numeric
// - complexity: 1 upper, 1 lower, 1 digit, 1 special
// - no user attrs similarity
// - no common password
func validatePassword(pwd string, sl validator.StructLevel, attrs ...string) {
	if pwd == "" {
		return // reported by `required`
	}
	if tag := checkPassword(pwd, attrs...); tag != "" {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}
}

// checkPassword returns the tag of the first policy rule pwd breaks, "" when it passes.
func checkPassword(pwd string, attrs ...string) string {
	var (
		digitCount                 int
		hasUpper, hasLower, hasDig bool
	)

	// - minLen: 8
	runes := []rune(pwd)
	if len(runes) < pwdMinLen {
		return pwdMinLenTag
	}
	for _, char := range runes {
		// - no whitespace
		if unicode.IsSpace(char) {
			return pwdNoSpaceTag
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
		if !hasUpper && unicode.IsUpper(char) {
			hasUpper = true
		}
		if !hasLower && unicode.IsLower(char) {
			hasLower = true
		}
	}

	// - not all numeric
	if digitCount == len(runes) {
		return pwdNotAllNumTag
	}

	// - complexity: 1 upper, 1 lower, 1 digit & 1 special
	hasDig = digitCount > 0
	if !(hasUpper && hasLower && hasDig && specialRegex.MatchString(pwd)) {
		return pwdComplexityTag
	}

	// - no user attrs similarity
	lpwd := strings.ToLower(pwd)
	for _, attr := range attrs {
		attr = strings.ToLower(attr)
		if attr == "" {
			continue
		}
		ratio := difflib.NewMatcher(strings.Split(lpwd, ""), strings.Split(attr, "")).QuickRatio()
		if ratio >= pwdMaxSim {
			return pwdAttrSimTag
		}
	}

	// - no common passwords
	if idx := sort.SearchStrings(commonPasswords, lpwd); idx < len(commonPasswords) && commonPasswords[idx] == lpwd {
		return pwdNoCommonTag
	}
	return ""
}
