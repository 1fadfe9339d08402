package league

// LeagueStore defines the interface for interacting with players and games.
type LeagueStore interface {
	AddPlayer(playerID, name string)
	UpsertPlayers(players []PlayerInfo) error
	IsKnownPlayer(playerID string) bool
	GetAllPlayers() ([]PlayerInfo, error)

	CreateGame(game *Game) error
	GetGame(gameID string) (*Game, error)
	GetAllGames() ([]*Game, error)

	ApplyFinalizedResult(res FinalizedResult) error
	GetLeaderboard() ([]PlayerTotals, error)

	Clear()
	ClearGame(gameID string)
}
