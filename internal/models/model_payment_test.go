package models

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestPayment_TableName(t *testing.T) {
	var p Payment
	require.Equal(t, "payment", p.TableName())
	var l PaymentNotificationLog
	require.Equal(t, "payment_notification_log", l.TableName())
}

func TestPayment_GetMaskedCard(t *testing.T) {
	var nilPayment *Payment
	require.Nil(t, nilPayment.GetMaskedCard())

	p := &Payment{MaskedCard: datatypes.NewJSONType(&MaskedCard{Last4: "4242", HolderName: "Jane Doe"})}
	require.Equal(t, "4242", p.GetMaskedCard().Last4)
}
