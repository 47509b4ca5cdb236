package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/sirupsen/logrus"

	"barterhub/internal/interfaces"
	"barterhub/internal/logger"
	"barterhub/internal/models"
)

// free product unless the offer says otherwise
const DEFAULT_DISCOUNT_PERCENT = 100

type FulfillmentResult struct {
	DiscountCreated bool   `json:"discount_created"`
	OrderCreated    bool   `json:"order_created"`
	ShipmentCreated bool   `json:"shipment_created"`
	Notified        bool   `json:"notified"`
	DiscountID      string `json:"discount_id,omitempty"`
	OrderID         string `json:"order_id,omitempty"`
}

type FulfillmentRequest struct {
	Match   *models.Match
	Offer   *models.Offer
	Creator *models.Creator
}

// ServiceFulfillment runs the side effects of an accepted match. Every step is attempted
// independently and failures only clear the step's flag; the match itself is never touched.
type ServiceFulfillment struct {
	commerce  interfaces.Commerce
	shipments interfaces.ShipmentStore
	notifier  interfaces.Notifier
	log       *logrus.Entry
}

func NewServiceFulfillment(container *do.Injector) (*ServiceFulfillment, error) {
	commerce, err := do.Invoke[interfaces.Commerce](container)
	if err != nil {
		return nil, err
	}

	shipments, err := do.Invoke[interfaces.ShipmentStore](container)
	if err != nil {
		return nil, err
	}

	notifier, err := do.Invoke[interfaces.Notifier](container)
	if err != nil {
		return nil, err
	}

	return &ServiceFulfillment{commerce, shipments, notifier, logger.For("fulfillment")}, nil
}

func (service *ServiceFulfillment) Fulfill(ctx context.Context, req FulfillmentRequest) FulfillmentResult {
	var result FulfillmentResult
	log := service.log.WithFields(logrus.Fields{"match_id": req.Match.ID, "offer_id": req.Offer.ID})
	metadata := req.Offer.Metadata

	percent := metadata.DiscountPercent
	if percent <= 0 {
		percent = DEFAULT_DISCOUNT_PERCENT
	}
	discountID, err := service.commerce.CreateDiscountCode(ctx, interfaces.DiscountRequest{
		Code:       req.Match.CampaignCode,
		Percent:    percent,
		ProductIDs: metadata.ProductIDs,
		BrandID:    req.Offer.BrandID,
	})
	if err != nil {
		log.WithError(err).Warn("discount code not created")
	} else {
		result.DiscountCreated = true
		result.DiscountID = discountID
	}

	if len(metadata.ProductIDs) > 0 {
		orderID, err := service.commerce.CreateOrder(ctx, interfaces.OrderRequest{
			MatchID:    req.Match.ID,
			BrandID:    req.Offer.BrandID,
			ProductIDs: metadata.ProductIDs,
			Recipient:  *req.Creator,
			Reference:  req.Match.CampaignCode,
		})
		if err != nil {
			log.WithError(err).Warn("order not created")
		} else {
			result.OrderCreated = true
			result.OrderID = orderID
		}
	} else if metadata.RequiresAddress() {
		created, err := service.shipments.InsertManualShipment(ctx, &models.ManualShipment{
			MatchID:       req.Match.ID,
			RecipientName: req.Creator.DisplayName,
			AddressLine1:  req.Creator.AddressLine1,
			City:          req.Creator.City,
			PostalCode:    req.Creator.PostalCode,
			Country:       req.Creator.AddressCountry,
			Status:        models.ShipmentStatusPending,
		})
		if err != nil {
			log.WithError(err).Warn("manual shipment not recorded")
		}
		result.ShipmentCreated = created
	}

	delivery := service.notifier.Notify(ctx, acceptedNotification(req))
	result.Notified = delivery.Any()

	log.WithFields(logrus.Fields{
		"discount": result.DiscountCreated,
		"order":    result.OrderCreated,
		"shipment": result.ShipmentCreated,
		"notified": result.Notified,
	}).Info("fulfillment finished")
	return result
}

func acceptedNotification(req FulfillmentRequest) models.Notification {
	return models.Notification{
		ID:      uuid.NewString(),
		Kind:    models.NotificationMatchAccepted,
		To:      req.Creator.Contact(),
		Subject: fmt.Sprintf("You're in: %s", req.Offer.Title),
		Body: fmt.Sprintf(
			"Your claim on %q was accepted.\n\nYour campaign code is %s. Include it in the caption of your post so we can verify it automatically.\nShare link: %s",
			req.Offer.Title, req.Match.CampaignCode, SharePath(req.Match.CampaignCode),
		),
	}
}
