package firstclick

import "github.com/mulesoft-labs/wikiauth/auth"

// Rule identifies which branch of the decision produced a result.
type Rule int

const (
	// RuleNone means no rule applied and the base principal was kept.
	RuleNone Rule = iota
	// RuleAuthenticated means a real user was authenticated; the session
	// was not touched.
	RuleAuthenticated
	// RuleFirstClickLogin means the first-click anonymous user was granted.
	RuleFirstClickLogin
	// RuleInternalAjax means an internal AJAX request was let through.
	RuleInternalAjax
	// RuleFirstClickLogout means the first-click anonymous user was logged out.
	RuleFirstClickLogout
	// RuleBotLogin means the bot anonymous user was granted.
	RuleBotLogin
	// RuleBotLogout means the bot anonymous user was logged out.
	RuleBotLogout
)

func (r Rule) String() string {
	switch r {
	case RuleNone:
		return "none"
	case RuleAuthenticated:
		return "authenticated"
	case RuleFirstClickLogin:
		return "fcf.login"
	case RuleInternalAjax:
		return "fcf.ajax"
	case RuleFirstClickLogout:
		return "fcf.logout"
	case RuleBotLogin:
		return "bot.login"
	case RuleBotLogout:
		return "bot.logout"
	default:
		return "unknown"
	}
}

// Decision is the outcome of one evaluation.
type Decision struct {
	// Principal is the caller's resulting identity, nil for anonymous.
	Principal auth.Principal
	Rule      Rule
}
