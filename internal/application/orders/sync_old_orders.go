package orders

import (
	"context"
	"errors"

	"github.com/jhoicas/shopsync-erp/internal/application/dto"
	"github.com/jhoicas/shopsync-erp/internal/domain"
	"github.com/jhoicas/shopsync-erp/internal/domain/repository"
)

// SyncOldOrders recorre los pedidos históricos de la tienda en el rango
// configurado y los sincroniza uno a uno. Cada pedido produce su propio
// registro de bitácora; los ya sincronizados pasan de largo en silencio. Al
// terminar el recorrido completo el flag de backfill se apaga solo.
func (u *SyncUseCase) SyncOldOrders(ctx context.Context, requestID string) {
	setting, err := u.settings.Get(ctx, Integration)
	if err != nil || setting == nil || !setting.SyncOldOrders {
		return
	}
	if u.shop == nil {
		u.log.WithRequestID(requestID).Warn().Msg("backfill habilitado pero sin cliente de la tienda configurado")
		return
	}

	err = u.shop.ListOrders(ctx, setting.OldOrdersFrom, setting.OldOrdersTo, func(order *dto.ShopOrder) error {
		txErr := u.tx.Run(ctx, func(repos repository.Repos) error {
			return u.createOrderDocs(ctx, repos, setting, order)
		})
		if errors.Is(txErr, domain.ErrDuplicate) {
			// Ya sincronizado por webhook o por una corrida anterior.
			return nil
		}
		u.report(ctx, methodOrderBackfill, order.Name, requestID, txErr)
		return nil
	})
	if err != nil {
		u.log.WithRequestID(requestID).Error().Err(err).Msg("backfill interrumpido, el rango se reintenta en la próxima corrida")
		return
	}

	if err := u.settings.DisableOldOrderSync(ctx, Integration); err != nil {
		u.log.WithRequestID(requestID).Error().Err(err).Msg("no se pudo apagar el flag de backfill")
	}
}
