package knowledge

import "github.com/sshroot23cs/SupportSenseAI/internal/domain"

// sampleDocuments is the baseline knowledge base used when no file is
// present, so the agent can answer something out of the box.
func sampleDocuments() []domain.Document {
	return []domain.Document{
		{
			ID:       "plan_001",
			Category: "protection_plans",
			Title:    "What protection plans does SquareTrade offer?",
			Content:  "SquareTrade offers comprehensive protection plans for electronics including smartphones, tablets, laptops, and appliances. Plans cover accidental damage, hardware failure, and more depending on the product.",
			Keywords: []string{"plans", "coverage", "protection"},
		},
		{
			ID:       "claim_001",
			Category: "claims",
			Title:    "How to file a claim",
			Content:  "To file a claim: 1) Log in to your SquareTrade account, 2) Click 'File a Claim', 3) Provide details about the issue, 4) Submit photos if required, 5) Wait for claim approval.",
			Keywords: []string{"claim", "file", "process"},
		},
		{
			ID:       "support_001",
			Category: "support",
			Title:    "What is covered under SquareTrade plans?",
			Content:  "Coverage typically includes accidental damage from falls, liquid damage, hardware failure, and malfunction. Specific coverage depends on the plan selected and product type.",
			Keywords: []string{"coverage", "what's covered", "included"},
		},
		{
			ID:       "claim_002",
			Category: "claims",
			Title:    "How long does claim processing take?",
			Content:  "Most claims are processed within 5-10 business days. You can track your claim status in the SquareTrade app or website using your claim number.",
			Keywords: []string{"claim", "processing", "time", "status"},
		},
		{
			ID:       "plan_002",
			Category: "protection_plans",
			Title:    "Plan pricing and options",
			Content:  "SquareTrade plans start from $99 annually for basic coverage and go up to $299+ for premium plans with extended coverage. Prices vary by product type and coverage level.",
			Keywords: []string{"price", "cost", "plan", "affordable"},
		},
	}
}
