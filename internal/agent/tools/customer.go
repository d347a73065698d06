package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/medusa-chatbot/server/internal/agent/model"
)

func (r *Registry) getMyInfoSpec() *ToolSpec {
	return &ToolSpec{
		Info: &schema.ToolInfo{
			Name: ToolGetMyInfo,
			Desc: "Get customer's account information including name, email, phone, and addresses. Use when user asks about their profile or personal details.",
		},
		Run: func(ctx context.Context, _ json.RawMessage) model.ToolResult {
			customer, err := r.backends.Commerce.GetCustomer(ctx, r.session.Credentials)
			if err != nil {
				return model.ToolResult{Content: err.Error(), Err: err.Error()}
			}

			var b strings.Builder
			fullName := strings.TrimSpace(customer.FirstName + " " + customer.LastName)
			if fullName != "" {
				fmt.Fprintf(&b, "Name: %s\n", fullName)
			}
			if customer.Email != "" {
				fmt.Fprintf(&b, "Email: %s\n", customer.Email)
			}
			if customer.Phone != "" {
				fmt.Fprintf(&b, "Phone: %s\n", customer.Phone)
			}
			if n := len(customer.Addresses); n > 0 {
				fmt.Fprintf(&b, "\n%d address(es) saved", n)
			} else {
				b.WriteString("\nNo addresses saved")
			}

			return model.ToolResult{
				Content: "Here's your account information:\n\n" + wrapHidden(b.String()),
				Payload: &model.Payload{Type: model.PayloadCustomerInfo, Customer: customer},
			}
		},
	}
}
