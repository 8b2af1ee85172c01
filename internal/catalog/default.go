package catalog

import "github.com/hazadus/nayuta/internal/data"

// defaultTracks - встроенный каталог, используемый при отсутствии файла данных
var defaultTracks = []data.Track{
	{ID: 1, Title: "Tracen Ondo", Artist: "ナリタブライアン (CV. 衣川里佳)", AudioRef: "Src/Music/Tracen ondo  - ナリタブライアン (CV. 衣川里佳).mp3", Cover: "Src/Card-img/Tracen Ondo.jpg", Genre: "Rock", TimesPlayed: 150},
	{ID: 2, Title: "2005", Artist: "South Arcade", AudioRef: "Src/Music/2005 - South Arcade.mp3", Cover: "Src/Card-img/2005.jpg", Genre: "Rock", TimesPlayed: 80},
	{ID: 3, Title: "Crushcrushcrush", Artist: "Paramore", AudioRef: "Src/Music/Crushcrushcrush - Paramore.mp3", Cover: "Src/Card-img/CrushCrush.jpg", Genre: "Rock", TimesPlayed: 205},
	{ID: 4, Title: "Hai Yorokonde", Artist: "Kocchi no Kento", AudioRef: "Src/Music/Hai Yorokonde - Kocchi no Kento.mp3", Cover: "Src/Card-img/Hai Yorokonde.jpg", Genre: "Pop", TimesPlayed: 70},
	{ID: 5, Title: "KAGUTSUCHI", Artist: "A.SAKA", AudioRef: "Src/Music/KAGUTSUCHI - A.SAKA.mp3", Cover: "Src/Card-img/A.saka.jpg", Genre: "Rock", TimesPlayed: 60},
	{ID: 6, Title: "Let's Play A Game!", Artist: "Vanguard S.S", AudioRef: "Src/Music/Let Play A Game - Vanguard S.S.mp3", Cover: "Src/Card-img/Let's Play.jpg", Genre: "Electronic", TimesPlayed: 40},
	{ID: 7, Title: "Resolute Secation", Artist: "Vanguard S.S", AudioRef: "Src/Music/Resolute Secation - Vanguard S.S.mp3", Cover: "Src/Card-img/PoP - Resolute.jpg", Genre: "Rock", TimesPlayed: 95},
	{ID: 8, Title: "Tetoris", Artist: "Teto", AudioRef: "Src/Music/Tetoris - Teto.mp3", Cover: "Src/Card-img/Tetoris.png", Genre: "Pop", TimesPlayed: 30},
	{ID: 9, Title: "UNDEAD", Artist: "YOASOBI", AudioRef: "Src/Music/UNDEAD - YOASOBI.mp3", Cover: "Src/Card-img/Undead.jpg", Genre: "Pop", TimesPlayed: 2984},
	{ID: 10, Title: "ラビットホール", Artist: "DECO*27", AudioRef: "Src/Music/RabitHole.mp3", Cover: "Src/Card-img/Rh.jpg", Genre: "Pop", TimesPlayed: 3100},
	{ID: 11, Title: "Travelers", Artist: "Andrew Prahlow", AudioRef: "Src/Music/Travelers.mp3", Cover: "Src/Card-img/Ow.jpg", Genre: "Pop", TimesPlayed: 5000},
	{ID: 12, Title: "Assault TAXI", Artist: "∀Ｓ∀", AudioRef: "Src/Music/Taxi.mp3", Cover: "Src/Card-img/Taxi.jpg", Genre: "Electronic", TimesPlayed: 190},
}

// Default возвращает каталог со встроенным набором треков
func Default() *Provider {
	return New(defaultTracks)
}

// Load читает каталог из файла данных. Если файл пуст или отсутствует,
// используется встроенный набор треков.
func Load(path string) (*Provider, error) {
	appData := data.NewAppData()
	if err := appData.LoadData(path); err != nil {
		return nil, err
	}
	if len(appData.Tracks) == 0 {
		return Default(), nil
	}
	return New(appData.Tracks), nil
}
