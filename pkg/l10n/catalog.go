package l10n

import "golang.org/x/text/language"

// Japanese is the default catalog.
var Japanese = &Catalog{
	tag: language.Japanese,
	messages: map[ID]string{
		FailedToGetInformation: "情報の取得に失敗しました",
		ForgottenAttachment:    "本文に「添付」という文言がありますが、ファイルが添付されていません。",
		Unknown:                "不明",
		FormatText:             "テキスト",
		FormatHTML:             "HTML",
		FormatRichText:         "リッチテキスト",
		AutoAdd:                "宛先の自動追加",
		ByKeyword:              "該当キーワード",
		ByRecipient:            "該当宛先",
		BigAttachment:          "10MB以上のファイルが添付されています",
		ExeAttachment:          "実行ファイル(.exe)が添付されています",
		MaybeIrrelevant:        "本文中の社名と関係のない宛先かもしれません",
		AlertTo:                "注意が必要な宛先がToに含まれています",
		AlertCc:                "注意が必要な宛先がCcに含まれています",
		AlertBcc:               "注意が必要な宛先がBccに含まれています",
		ForbiddenAddress:       "送信禁止の宛先が含まれています",
		ExtensionAlert:         "拡張機能からの警告",
	},
	words: []string{"添付"},
}

// English is the en-US catalog.
var English = &Catalog{
	tag: language.AmericanEnglish,
	messages: map[ID]string{
		FailedToGetInformation: "Failed to get information",
		ForgottenAttachment:    "The body mentions an attachment, but no file is attached.",
		Unknown:                "Unknown",
		FormatText:             "Text",
		FormatHTML:             "HTML",
		FormatRichText:         "Rich Text",
		AutoAdd:                "Recipient added automatically",
		ByKeyword:              "keyword",
		ByRecipient:            "recipient",
		BigAttachment:          "A file of 10MB or more is attached",
		ExeAttachment:          "An executable file (.exe) is attached",
		MaybeIrrelevant:        "may be unrelated to the company named in the body",
		AlertTo:                "To contains an address that needs attention",
		AlertCc:                "Cc contains an address that needs attention",
		AlertBcc:               "Bcc contains an address that needs attention",
		ForbiddenAddress:       "Sending to this address is forbidden",
		ExtensionAlert:         "Extension alert",
	},
	words: []string{"添付", "attach"},
}
