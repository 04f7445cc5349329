package orders

import (
	"context"
	"fmt"

	"github.com/jhoicas/shopsync-erp/internal/application/dto"
	"github.com/jhoicas/shopsync-erp/internal/domain"
	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
	"github.com/jhoicas/shopsync-erp/internal/domain/repository"
)

const shopStatusCancelled = "cancelled"

// CancelOrder procesa un evento orders/cancelled: marca el estado de la
// tienda sobre toda la cadena documental. El pedido de venta solo se cancela
// contablemente cuando no tiene factura ni nota de entrega derivadas; con
// derivados, la contabilidad ya ocurrió y únicamente se refleja el estado de
// la tienda. Un evento para un pedido nunca sincronizado termina en Invalid.
func (u *SyncUseCase) CancelOrder(ctx context.Context, requestID string, order *dto.ShopOrder) {
	err := u.tx.Run(ctx, func(repos repository.Repos) error {
		return u.cancelOrderDocs(ctx, repos, order)
	})
	u.report(ctx, methodOrderCancel, order.Name, requestID, err)
}

func (u *SyncUseCase) cancelOrderDocs(ctx context.Context, repos repository.Repos, order *dto.ShopOrder) error {
	shopOrderID := order.OrderID()

	so, err := repos.SalesOrders.GetByShopOrderID(ctx, shopOrderID)
	if err != nil {
		return err
	}
	if so == nil {
		return fmt.Errorf("%w: el pedido %s no está sincronizado, nada que cancelar", domain.ErrConflict, order.Name)
	}
	if so.DocStatus == entity.DocStatusCancelled {
		return fmt.Errorf("%w: el pedido %s ya está cancelado", domain.ErrConflict, order.Name)
	}

	if err := repos.SalesOrders.SetShopStatus(ctx, so.ID, shopStatusCancelled); err != nil {
		return err
	}

	// Los documentos derivados conservan su estado contable; solo reflejan el
	// estado reportado por la tienda.
	inv, err := repos.SalesInvoices.GetByShopOrderID(ctx, shopOrderID)
	if err != nil {
		return err
	}
	if inv != nil {
		if err := repos.SalesInvoices.SetShopStatus(ctx, inv.ID, shopStatusCancelled); err != nil {
			return err
		}
	}

	notes, err := repos.DeliveryNotes.ListByShopOrderID(ctx, shopOrderID)
	if err != nil {
		return err
	}
	for _, dn := range notes {
		if err := repos.DeliveryNotes.SetShopStatus(ctx, dn.ID, shopStatusCancelled); err != nil {
			return err
		}
	}

	if inv == nil && len(notes) == 0 && so.DocStatus == entity.DocStatusSubmitted {
		return repos.SalesOrders.Cancel(ctx, so.ID)
	}
	return nil
}
