package main

// Reply texts. The bot answers in Kazakh regardless of the language the
// transaction was reported in.
const (
	msgGreeting = "Сәлем! Қалай көмектесейін? Мысал: «бүгін такси 2000 төледім және жерден 4000 таптым»."

	msgSavedMulti        = "Жазбалар сақталды: %d шт.\n%s\nЖиынтық: Кіріс=%s KZT, Шығыс=%s KZT, Таза=%s KZT."
	msgAskConfirmUnknown = "Кейбір сандардың түрін анықтай алмадым: %s\nТүзету үшін қысқа сөйлем жазыңыз (мысалы: 'сол 2-ні шығыс деп өзгерту')."
	msgNoAmount          = "Сандар табылмады — нақты соманы жіберіңіз немесе кесте файлын жіберіңіз."
	msgError             = "Қате: %v"

	msgTodaySummary = "Бүгінгі есеп — Кіріс: %s KZT; Шығыс: %s KZT; Таза: %s KZT."

	msgDeleted       = "Жазба(лар) жойылды: %d."
	msgEdited        = "Жазба өзгертілді."
	msgNothingToEdit = "Өзгертетін жазба табылмады."
	msgEditHelp      = "Өңдеу форматын түсінбедім. Мысал: 'change last to 3000' немесе 'последний 3000'."

	msgExportReady    = "Сұралған экспорт дайын — файл жіберілді."
	msgFileNotFound   = "Көрсетілген файл табылмады."
	msgNoTransactions = "Осы күнге жазба табылмады."

	msgFileSaved      = "Файл сақталды және өңделді: %d жазба табылды."
	msgFileUnreadable = "Файл қабылданды, бірақ оқу сәтсіз аяқталды — файл сақталды."
)

func typeLabel(t TxnType) string {
	if t == TypeIncome {
		return "Кіріс"
	}
	return "Шығыс"
}
