package orders

import "github.com/dreamcandylab/candylab-backend/pkg/enums"

var statusText = map[enums.OrderStatus]string{
	enums.OrderStatusPending:    "결제 대기",
	enums.OrderStatusProcessing: "주문 처리중",
	enums.OrderStatusShipped:    "배송중",
	enums.OrderStatusDelivered:  "배송 완료",
	enums.OrderStatusCancelled:  "취소됨",
}

var statusEmoji = map[enums.OrderStatus]string{
	enums.OrderStatusPending:    "⏳",
	enums.OrderStatusProcessing: "📦",
	enums.OrderStatusShipped:    "🚚",
	enums.OrderStatusDelivered:  "✅",
	enums.OrderStatusCancelled:  "❌",
}

// StatusText is the display label for a status. Unknown values pass through.
func StatusText(status enums.OrderStatus) string {
	if text, ok := statusText[status]; ok {
		return text
	}
	return string(status)
}

func StatusEmoji(status enums.OrderStatus) string {
	if emoji, ok := statusEmoji[status]; ok {
		return emoji
	}
	return "📋"
}
