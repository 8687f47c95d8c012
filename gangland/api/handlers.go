package api

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/gangland/server/gangland/config"
	"github.com/gangland/server/internal/domain/engine"
	"github.com/gangland/server/internal/domain/game"
)

type Handlers struct {
	game   *game.Service
	tables game.TablesSource
	ping   func(context.Context) error
}

type registerRequest struct {
	Username string  `json:"username"`
	Wallet   *string `json:"wallet"`
}

type targetRequest struct {
	TargetID string `json:"targetId"`
}

type travelRequest struct {
	CityID *int `json:"cityId"`
}

type listCarRequest struct {
	CarID string `json:"carId"`
	Price int64  `json:"price"`
}

type buyCarRequest struct {
	ExpectedPrice int64 `json:"expectedPrice"`
}

type amountRequest struct {
	Amount int64 `json:"amount"`
}

func player(c *fiber.Ctx) string {
	sess, _ := sessionFrom(c)
	return sess.PlayerID
}

func intParam(c *fiber.Ctx, name string) (int, error) {
	v, err := c.ParamsInt(name, -1)
	if err != nil || v < 0 {
		return 0, engine.Validation("%s must be a non-negative integer", name)
	}
	return v, nil
}

func bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return engine.Validation("invalid request body")
	}
	return nil
}

// respond sends data or maps err.
func respond(c *fiber.Ctx, data any, err error, message string) error {
	if err != nil {
		return SendGameError(c, err)
	}
	return SendSuccess(c, data, message)
}

func (h *Handlers) Health(c *fiber.Ctx) error {
	if h.ping != nil {
		if err := h.ping(c.UserContext()); err != nil {
			return SendError(c, fiber.StatusServiceUnavailable, "UNAVAILABLE", "database unreachable", nil)
		}
	}
	return SendSuccess(c, fiber.Map{"status": "ok"}, "")
}

func (h *Handlers) Tables(c *fiber.Ctx) error {
	t, err := h.tables.Tables(c.UserContext())
	return respond(c, t, err, "")
}

func (h *Handlers) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return SendGameError(c, err)
	}
	p, err := h.game.Register(c.UserContext(), player(c), req.Username, req.Wallet)
	if err != nil {
		return SendGameError(c, err)
	}
	return SendCreated(c, p, "Welcome to the family")
}

func (h *Handlers) Me(c *fiber.Ctx) error {
	prof, err := h.game.Profile(c.UserContext(), player(c))
	return respond(c, prof, err, "")
}

func (h *Handlers) LookupPlayers(c *fiber.Ctx) error {
	if name := c.Query("username"); name != "" {
		ref, err := h.game.PlayerByUsername(c.UserContext(), name)
		return respond(c, ref, err, "")
	}
	refs, err := h.game.FindPlayers(c.UserContext(), c.Query("q"), config.MaxLookupResults)
	return respond(c, refs, err, "")
}

func (h *Handlers) CommitCrime(c *fiber.Ctx) error {
	id, err := intParam(c, "id")
	if err != nil {
		return SendGameError(c, err)
	}
	res, err := h.game.CommitCrime(c.UserContext(), player(c), id)
	return respond(c, res, err, "")
}

func (h *Handlers) StartSearch(c *fiber.Ctx) error {
	var req targetRequest
	if err := bind(c, &req); err != nil {
		return SendGameError(c, err)
	}
	if req.TargetID == "" {
		return SendGameError(c, engine.Validation("targetId is required"))
	}
	res, err := h.game.StartSearch(c.UserContext(), player(c), req.TargetID)
	return respond(c, res, err, "Search started")
}

func (h *Handlers) CancelSearch(c *fiber.Ctx) error {
	p, err := h.game.CancelSearch(c.UserContext(), player(c))
	return respond(c, p, err, "Search cancelled")
}

func (h *Handlers) Shoot(c *fiber.Ctx) error {
	var req targetRequest
	if err := bind(c, &req); err != nil {
		return SendGameError(c, err)
	}
	if req.TargetID == "" {
		return SendGameError(c, engine.Validation("targetId is required"))
	}
	res, err := h.game.Shoot(c.UserContext(), player(c), req.TargetID)
	return respond(c, res, err, "")
}

func (h *Handlers) Travel(c *fiber.Ctx) error {
	var req travelRequest
	if err := bind(c, &req); err != nil {
		return SendGameError(c, err)
	}
	if req.CityID == nil {
		return SendGameError(c, engine.Validation("cityId is required"))
	}
	res, err := h.game.Travel(c.UserContext(), player(c), *req.CityID)
	return respond(c, res, err, "")
}

func (h *Handlers) BuyGun(c *fiber.Ctx) error {
	id, err := intParam(c, "id")
	if err != nil {
		return SendGameError(c, err)
	}
	res, err := h.game.BuyGun(c.UserContext(), player(c), id)
	return respond(c, res, err, "")
}

func (h *Handlers) BuyProtection(c *fiber.Ctx) error {
	id, err := intParam(c, "id")
	if err != nil {
		return SendGameError(c, err)
	}
	res, err := h.game.BuyProtection(c.UserContext(), player(c), id)
	return respond(c, res, err, "")
}

func (h *Handlers) MeltCar(c *fiber.Ctx) error {
	res, err := h.game.MeltCar(c.UserContext(), player(c), c.Params("id"))
	return respond(c, res, err, "")
}

func (h *Handlers) RepairCar(c *fiber.Ctx) error {
	res, err := h.game.RepairCar(c.UserContext(), player(c), c.Params("id"))
	return respond(c, res, err, "")
}

func (h *Handlers) ActivateCar(c *fiber.Ctx) error {
	p, err := h.game.SetActiveCar(c.UserContext(), player(c), c.Params("id"))
	return respond(c, p, err, "")
}

func (h *Handlers) Factories(c *fiber.Ctx) error {
	fs, err := h.game.Factories(c.UserContext())
	return respond(c, fs, err, "")
}

func (h *Handlers) TakeoverFactory(c *fiber.Ctx) error {
	city, err := intParam(c, "city")
	if err != nil {
		return SendGameError(c, err)
	}
	res, err := h.game.TakeoverFactory(c.UserContext(), player(c), city)
	return respond(c, res, err, "Factory taken over")
}

func (h *Handlers) CollectBullets(c *fiber.Ctx) error {
	city, err := intParam(c, "city")
	if err != nil {
		return SendGameError(c, err)
	}
	res, err := h.game.CollectBullets(c.UserContext(), player(c), city)
	return respond(c, res, err, "")
}

func (h *Handlers) Listings(c *fiber.Ctx) error {
	filter := game.ListingFilter{
		SellerID: c.Query("seller"),
		Offset:   c.QueryInt("offset", 0),
		Limit:    c.QueryInt("limit", config.DefaultPageSize),
	}
	if v := c.Query("carType"); v != "" {
		ct, err := strconv.Atoi(v)
		if err != nil {
			return SendGameError(c, engine.Validation("carType must be an integer"))
		}
		filter.CarType = &ct
	}
	if v := c.Query("maxPrice"); v != "" {
		mp, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return SendGameError(c, engine.Validation("maxPrice must be an integer"))
		}
		filter.MaxPrice = mp
	}

	ls, total, err := h.game.Listings(c.UserContext(), filter)
	if err != nil {
		return SendGameError(c, err)
	}
	offset := max(filter.Offset, 0)
	return SendPaginated(c, ls, PaginationInfo{
		Offset:  offset,
		Limit:   len(ls),
		Total:   total,
		HasNext: offset+len(ls) < total,
	})
}

func (h *Handlers) ListCar(c *fiber.Ctx) error {
	var req listCarRequest
	if err := bind(c, &req); err != nil {
		return SendGameError(c, err)
	}
	l, err := h.game.ListCar(c.UserContext(), player(c), req.CarID, req.Price)
	if err != nil {
		return SendGameError(c, err)
	}
	return SendCreated(c, l, "Car listed")
}

func (h *Handlers) BuyCar(c *fiber.Ctx) error {
	var req buyCarRequest
	if err := bind(c, &req); err != nil {
		return SendGameError(c, err)
	}
	res, err := h.game.BuyCar(c.UserContext(), player(c), c.Params("id"), req.ExpectedPrice)
	return respond(c, res, err, "Car bought")
}

func (h *Handlers) CancelListing(c *fiber.Ctx) error {
	l, err := h.game.CancelListing(c.UserContext(), player(c), c.Params("id"))
	return respond(c, l, err, "Listing cancelled")
}

func (h *Handlers) Deposit(c *fiber.Ctx) error {
	var req amountRequest
	if err := bind(c, &req); err != nil {
		return SendGameError(c, err)
	}
	p, err := h.game.Deposit(c.UserContext(), player(c), req.Amount)
	return respond(c, p, err, "")
}

func (h *Handlers) Withdraw(c *fiber.Ctx) error {
	var req amountRequest
	if err := bind(c, &req); err != nil {
		return SendGameError(c, err)
	}
	p, err := h.game.Withdraw(c.UserContext(), player(c), req.Amount)
	return respond(c, p, err, "")
}
